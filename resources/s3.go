package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Client is the part of the S3 API content listing and fetching use.
type S3Client interface {
	ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output,
		error)
	GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

// S3Source serves `.content` objects under Prefix in Bucket.
type S3Source struct {
	Client S3Client
	Bucket string
	Prefix string
}

// ParseS3URI splits `s3://bucket/prefix` into bucket and prefix.
func ParseS3URI(uri string) (bucket string, prefix string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", errors.New(fmt.Sprintf("not an s3 uri: %s", uri))
	}
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.New(fmt.Sprintf("no bucket in %s", uri))
	}
	return bucket, prefix, nil
}

// NewS3Source
// Credentials and region come from the usual AWS environment and shared
// config.
func NewS3Source(uri string) (*S3Source, error) {
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return &S3Source{
		Client: s3.New(sess),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

// List pages through the prefix, keeping `.content` keys sorted by key.
func (source *S3Source) List(ctx context.Context) ([]ContentRef, error) {
	refs := make([]ContentRef, 0)
	var continuationToken *string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output, err := source.Client.ListObjectsV2(&s3.ListObjectsV2Input{
			Bucket:            aws.String(source.Bucket),
			Prefix:            aws.String(source.Prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", source.Bucket,
				source.Prefix, err)
		}
		for _, object := range output.Contents {
			key := aws.StringValue(object.Key)
			if !strings.HasSuffix(key, ContentExt) {
				continue
			}
			refs = append(refs, ContentRef{
				DocumentId: DocumentIdFromPath(key),
				Path:       key,
				Size:       aws.Int64Value(object.Size),
			})
		}
		if !aws.BoolValue(output.IsTruncated) ||
			output.NextContinuationToken == nil {
			break
		}
		continuationToken = output.NextContinuationToken
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Path < refs[j].Path
	})
	return refs, nil
}

// s3Reader reports fetch progress while the object body is read.
type s3Reader struct {
	io.Reader
	body io.Closer
}

func (reader *s3Reader) Close() error {
	return reader.body.Close()
}

func (source *S3Source) Open(ctx context.Context, ref ContentRef) (
	io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	output, err := source.Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(source.Bucket),
		Key:    aws.String(ref.Path),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", source.Bucket,
			ref.Path, err)
	}
	size := ref.Size
	if output.ContentLength != nil {
		size = *output.ContentLength
	}
	counter := NewReadCounter(
		fmt.Sprintf("s3://%s/%s", source.Bucket, ref.Path), uint64(size))
	return &s3Reader{
		Reader: io.TeeReader(output.Body, counter),
		body:   output.Body,
	}, nil
}
