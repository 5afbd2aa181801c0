package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"reclass.dev/pkg/reclass/internal/adapter"
	"reclass.dev/pkg/reclass/internal/classfile"
)

// Build scans every class file under the source tree and returns the
// populated inheritance index. The scan is structural: only the class
// header and the method headers are decoded.
//
// The scan covers the full unfiltered class set regardless of any inclusion
// voters, because access correction must see the complete hierarchy. Any
// read or decode failure aborts the build; a partially populated index
// would silently weaken the guarantees of the consumers.
func Build(ctx context.Context, source adapter.Tree) (*Index, error) {
	paths, err := source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan source tree: %w", err)
	}

	index := NewIndex()

	for _, p := range paths {
		if !p.IsClass() {
			continue
		}

		data, err := source.Download(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		info, err := classfile.ParseInfo(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}

		index.Put(NewClassDescriptor(info))
	}

	slog.Debug("Built inheritance index", "classes", index.Len())

	return index, nil
}
