package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/yargevad/filepathx"
)

// DirSource serves content files found recursively under Dir.
type DirSource struct {
	Dir string
}

// List
// Given the source directory, recursively finds all `.content` files,
// returning them sorted by path.
func (source *DirSource) List(ctx context.Context) ([]ContentRef, error) {
	contentPaths, err := filepathx.Glob(source.Dir + "/**/*" + ContentExt)
	if err != nil {
		return nil, err
	}
	if len(contentPaths) == 0 {
		return nil, errors.New(fmt.Sprintf(
			"%s does not contain any %s files", source.Dir, ContentExt))
	}
	sort.Strings(contentPaths)
	refs := make([]ContentRef, 0, len(contentPaths))
	for _, contentPath := range contentPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stat, statErr := os.Stat(contentPath)
		if statErr != nil {
			return nil, statErr
		}
		if stat.IsDir() {
			continue
		}
		refs = append(refs, ContentRef{
			DocumentId: DocumentIdFromPath(contentPath),
			Path:       contentPath,
			Size:       stat.Size(),
		})
	}
	return refs, nil
}

func (source *DirSource) Open(ctx context.Context, ref ContentRef) (
	io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mapped, err := OpenMapped(ref.Path)
	if err != nil {
		return nil, err
	}
	return &mappedReader{Reader: mapped.Reader(), mapped: mapped}, nil
}
