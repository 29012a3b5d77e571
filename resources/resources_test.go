package resources

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3MockClient is a mock implementation of S3Client. Listing pages are
// served in order, one per call.
type S3MockClient struct {
	GetObjectOutputs     map[string]string
	GetObjectError       error
	ListObjectsV2Outputs []*s3.ListObjectsV2Output
	ListObjectsV2Error   error
	ListInputs           []*s3.ListObjectsV2Input
}

func (m *S3MockClient) ListObjectsV2(input *s3.ListObjectsV2Input) (
	*s3.ListObjectsV2Output,
	error,
) {
	if m.ListObjectsV2Error != nil {
		return nil, m.ListObjectsV2Error
	}
	page := len(m.ListInputs)
	m.ListInputs = append(m.ListInputs, input)
	return m.ListObjectsV2Outputs[page], nil
}

func (m *S3MockClient) GetObject(input *s3.GetObjectInput) (
	*s3.GetObjectOutput,
	error,
) {
	if m.GetObjectError != nil {
		return nil, m.GetObjectError
	}
	content, ok := m.GetObjectOutputs[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(content)),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

func writeFile(t *testing.T, path string, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDirSourceListAndOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "doc2.content"), "second")
	writeFile(t, filepath.Join(dir, "a", "doc1.content"), "first")
	writeFile(t, filepath.Join(dir, "a", "empty.content"), "")
	writeFile(t, filepath.Join(dir, "a", "notes.txt"), "ignored")

	source, err := NewContentSource(dir)
	require.NoError(t, err)
	refs, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "doc1", refs[0].DocumentId)
	assert.Equal(t, "empty", refs[1].DocumentId)
	assert.Equal(t, "doc2", refs[2].DocumentId)
	assert.Equal(t, int64(5), refs[0].Size)

	contents := make([]string, 0, len(refs))
	for _, ref := range refs {
		reader, openErr := source.Open(context.Background(), ref)
		require.NoError(t, openErr)
		content, readErr := io.ReadAll(reader)
		require.NoError(t, readErr)
		require.NoError(t, reader.Close())
		contents = append(contents, string(content))
	}
	assert.Equal(t, []string{"first", "", "second"}, contents)
}

func TestDirSourceEmpty(t *testing.T) {
	source := &DirSource{Dir: t.TempDir()}
	_, err := source.List(context.Background())
	assert.Error(t, err)
}

func TestDirSourceCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.content"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &DirSource{Dir: dir}
	_, err := source.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseS3URI(t *testing.T) {
	bucket, prefix, err := ParseS3URI("s3://narrative/tmp/content/")
	require.NoError(t, err)
	assert.Equal(t, "narrative", bucket)
	assert.Equal(t, "tmp/content/", prefix)

	bucket, prefix, err = ParseS3URI("s3://narrative")
	require.NoError(t, err)
	assert.Equal(t, "narrative", bucket)
	assert.Equal(t, "", prefix)

	_, _, err = ParseS3URI("s3:///content")
	assert.Error(t, err)
	_, _, err = ParseS3URI("/tmp/content")
	assert.Error(t, err)
}

func TestS3SourceListPaginates(t *testing.T) {
	mockSvc := &S3MockClient{
		ListObjectsV2Outputs: []*s3.ListObjectsV2Output{
			{
				Contents: []*s3.Object{
					{Key: aws.String("content/zz.content"),
						Size: aws.Int64(3)},
					{Key: aws.String("content/readme.txt"),
						Size: aws.Int64(9)},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("page2"),
			},
			{
				Contents: []*s3.Object{
					{Key: aws.String("content/aa.content"),
						Size: aws.Int64(4)},
				},
				IsTruncated: aws.Bool(false),
			},
		},
	}
	source := &S3Source{Client: mockSvc, Bucket: "bucket", Prefix: "content/"}
	refs, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "aa", refs[0].DocumentId)
	assert.Equal(t, int64(4), refs[0].Size)
	assert.Equal(t, "zz", refs[1].DocumentId)

	require.Len(t, mockSvc.ListInputs, 2)
	assert.Nil(t, mockSvc.ListInputs[0].ContinuationToken)
	assert.Equal(t, "page2", *mockSvc.ListInputs[1].ContinuationToken)
	assert.Equal(t, "content/", *mockSvc.ListInputs[1].Prefix)
}

func TestS3SourceListError(t *testing.T) {
	mockSvc := &S3MockClient{ListObjectsV2Error: errors.New("denied")}
	source := &S3Source{Client: mockSvc, Bucket: "bucket"}
	_, err := source.List(context.Background())
	assert.Error(t, err)
}

func TestS3SourceOpen(t *testing.T) {
	textContent := "This is a test. This is great. Have fun in life."
	mockSvc := &S3MockClient{
		GetObjectOutputs: map[string]string{"content/a.content": textContent},
	}
	source := &S3Source{Client: mockSvc, Bucket: "bucket"}
	reader, err := source.Open(context.Background(),
		ContentRef{DocumentId: "a", Path: "content/a.content"})
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NoError(t, reader.Close())
	assert.Equal(t, textContent, string(content))

	mockSvc.GetObjectError = errors.New("Simulated error")
	_, err = source.Open(context.Background(),
		ContentRef{DocumentId: "a", Path: "content/a.content"})
	assert.Error(t, err)
}

func TestReadCounter(t *testing.T) {
	counter := NewReadCounter("test", 10)
	n, err := io.Copy(io.Discard, io.TeeReader(strings.NewReader("hello"),
		counter))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, uint64(5), counter.Total)
}
