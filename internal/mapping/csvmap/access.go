package csvmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"reclass.dev/pkg/reclass/internal/mapping"
)

// AccessOptions names the columns of an access flag table. Kind, Name and
// Access are required and default to "kind", "name" and "access"; Owner and
// Desc are optional.
type AccessOptions struct {
	Kind   string
	Name   string
	Access string
	Owner  string
	Desc   string
}

func (o AccessOptions) kind() string {
	if o.Kind == "" {
		return "kind"
	}

	return o.Kind
}

func (o AccessOptions) name() string {
	if o.Name == "" {
		return "name"
	}

	return o.Name
}

func (o AccessOptions) access() string {
	if o.Access == "" {
		return "access"
	}

	return o.Access
}

// Access parses an access flag table. The kind column selects the row's
// target: "class", "field" or "method". Flags are symbolic, for example
// "protected" or "public final".
func Access(r io.Reader, opts AccessOptions) (*mapping.AccessTable, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	kind, err := column(header, opts.kind())
	if err != nil {
		return nil, err
	}

	name, err := column(header, opts.name())
	if err != nil {
		return nil, err
	}

	access, err := column(header, opts.access())
	if err != nil {
		return nil, err
	}

	owner := optionalColumn(header, opts.Owner)
	desc := optionalColumn(header, opts.Desc)

	table := mapping.NewAccessTable()

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return table, nil
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		flags, err := mapping.ParseAccessFlag(row[access])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		key := mapping.Member{Owner: cell(row, owner), Name: row[name], Desc: cell(row, desc)}

		switch row[kind] {
		case "class":
			table.Classes[row[name]] = flags
		case "field":
			table.Fields[key] = flags
		case "method":
			table.Methods[key] = flags
		default:
			return nil, fmt.Errorf("line %d: unknown kind %q", line, row[kind])
		}
	}
}
