package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"reclass.dev/pkg/reclass/internal/model"
)

// Tree provides access to a file tree rooted at a storage URL. Roots may be
// plain directories or archive-backed locations such as zip URLs; the afs
// scheme decides.
type Tree interface {
	// Root returns the tree's root URL.
	Root() string

	// List returns the relative paths of every file under the root, in
	// lexical order. Directories are not reported.
	List(ctx context.Context) ([]model.Path, error)

	// Download reads a file by its relative path.
	Download(ctx context.Context, rel model.Path) ([]byte, error)

	// Upload writes a file at a relative path, creating parent
	// directories as needed. Concurrent uploads into the same directory
	// are safe.
	Upload(ctx context.Context, rel model.Path, data []byte) error
}

type afsTree struct {
	fs   afs.Service
	root string
}

// NewTree constructs a Tree over the given root URL backed by the abstract
// file storage service.
func NewTree(root string) Tree {
	return &afsTree{fs: afs.New(), root: root}
}

func (t *afsTree) Root() string { return t.root }

func (t *afsTree) List(ctx context.Context) ([]model.Path, error) {
	var paths []model.Path

	err := t.fs.Walk(ctx, t.root, func(_ context.Context, _ string, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}

		paths = append(paths, model.Path(path.Join(parent, info.Name())))

		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", t.root, err)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths, nil
}

func (t *afsTree) Download(ctx context.Context, rel model.Path) ([]byte, error) {
	data, err := t.fs.DownloadWithURL(ctx, url.Join(t.root, string(rel)))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rel, err)
	}

	return data, nil
}

func (t *afsTree) Upload(ctx context.Context, rel model.Path, data []byte) error {
	target := url.Join(t.root, string(rel))

	if err := t.fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload %s: %w", rel, err)
	}

	return nil
}
