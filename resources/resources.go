package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// ContentExt is the suffix of raw document content files; the file name
// without it is the document id.
const ContentExt = ".content"

// ContentRef names one content file of a source.
type ContentRef struct {
	DocumentId string
	Path       string
	Size       int64
}

// ContentSource
// Enumerates and opens the raw content files of a corpus. Implementations
// must return refs in a stable order.
type ContentSource interface {
	List(ctx context.Context) ([]ContentRef, error)
	Open(ctx context.Context, ref ContentRef) (io.ReadCloser, error)
}

// DocumentIdFromPath strips the directory and the content suffix.
func DocumentIdFromPath(contentPath string) string {
	return strings.TrimSuffix(path.Base(contentPath), ContentExt)
}

// NewContentSource
// `s3://bucket/prefix` URIs are served from S3, everything else is treated
// as a local directory.
func NewContentSource(uri string) (ContentSource, error) {
	if strings.HasPrefix(uri, "s3://") {
		return NewS3Source(uri)
	}
	if stat, err := os.Stat(uri); err != nil {
		return nil, err
	} else if !stat.IsDir() {
		return nil, errors.New(fmt.Sprintf("%s is not a directory", uri))
	}
	return &DirSource{Dir: uri}, nil
}

// MappedFile is a file mapped read-only into memory.
type MappedFile struct {
	file *os.File
	data *mmap.MMap
}

// OpenMapped maps path read-only. Empty files are not mapped and yield no
// bytes.
func OpenMapped(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	mapped := &MappedFile{file: file}
	if stat.Size() == 0 {
		return mapped, nil
	}
	if mapped.data, err = readMmap(file); err != nil {
		file.Close()
		return nil, errors.New(
			fmt.Sprintf("error trying to mmap file %s: %s", filePath, err))
	}
	return mapped, nil
}

func (mapped *MappedFile) Bytes() []byte {
	if mapped.data == nil {
		return []byte{}
	}
	return *mapped.data
}

func (mapped *MappedFile) Reader() io.Reader {
	return bytes.NewReader(mapped.Bytes())
}

func (mapped *MappedFile) Close() error {
	var unmapErr error
	if mapped.data != nil {
		unmapErr = mapped.data.Unmap()
		mapped.data = nil
	}
	closeErr := mapped.file.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

// mappedReader reads a MappedFile and releases the mapping on Close.
type mappedReader struct {
	io.Reader
	mapped *MappedFile
}

func (reader *mappedReader) Close() error {
	return reader.mapped.Close()
}
