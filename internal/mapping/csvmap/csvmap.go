// Package csvmap parses tabular mapping files with configurable column
// names. The first record is the header; every later record contributes one
// rename. Column layout differs between exporters, so the caller names the
// columns instead of the format fixing them.
package csvmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"reclass.dev/pkg/reclass/internal/mapping"
)

// Options names the columns of a class, field or method mapping file. From
// and To are required and default to "from" and "to". Owner and Desc are
// optional; when set, member renames apply only to the recorded owner or
// descriptor instead of matching by name alone.
type Options struct {
	From  string
	To    string
	Owner string
	Desc  string
}

func (o Options) from() string {
	if o.From == "" {
		return "from"
	}

	return o.From
}

func (o Options) to() string {
	if o.To == "" {
		return "to"
	}

	return o.To
}

// Classes parses a class rename table.
func Classes(r io.Reader, opts Options) (*mapping.Table, error) {
	table := mapping.NewTable()

	err := eachRow(r, opts, func(owner, from, to, _ string) {
		table.Classes[from] = to
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// Fields parses a field rename table.
func Fields(r io.Reader, opts Options) (*mapping.Table, error) {
	table := mapping.NewTable()

	err := eachRow(r, opts, func(owner, from, to, desc string) {
		table.Fields[mapping.Member{Owner: owner, Name: from, Desc: desc}] = to
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// Methods parses a method rename table.
func Methods(r io.Reader, opts Options) (*mapping.Table, error) {
	table := mapping.NewTable()

	err := eachRow(r, opts, func(owner, from, to, desc string) {
		table.Methods[mapping.Member{Owner: owner, Name: from, Desc: desc}] = to
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

func eachRow(r io.Reader, opts Options, record func(owner, from, to, desc string)) error {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	from, err := column(header, opts.from())
	if err != nil {
		return err
	}

	to, err := column(header, opts.to())
	if err != nil {
		return err
	}

	owner := optionalColumn(header, opts.Owner)
	desc := optionalColumn(header, opts.Desc)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		record(cell(row, owner), row[from], row[to], cell(row, desc))
	}
}

// ParameterOptions names the columns of a parameter rename table. At least
// one of Name and Index must be set: Name keys renames by the declared
// parameter name, Index by zero-based position (scoped by the optional
// Owner, Method and Desc columns).
type ParameterOptions struct {
	Name   string
	Index  string
	To     string
	Owner  string
	Method string
	Desc   string
}

// Parameters parses a parameter rename table. Configuring neither a name
// nor an index column is a configuration error reported before any row is
// read.
func Parameters(r io.Reader, opts ParameterOptions) (*mapping.Table, error) {
	if opts.Name == "" && opts.Index == "" {
		return nil, errors.New("parameter mapping needs a name or index column")
	}

	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	to, err := column(header, Options{To: opts.To}.to())
	if err != nil {
		return nil, err
	}

	name := optionalColumn(header, opts.Name)
	index := optionalColumn(header, opts.Index)
	owner := optionalColumn(header, opts.Owner)
	method := optionalColumn(header, opts.Method)
	desc := optionalColumn(header, opts.Desc)

	if name < 0 && index < 0 {
		return nil, fmt.Errorf("neither column %q nor %q present in header", opts.Name, opts.Index)
	}

	table := mapping.NewTable()

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return table, nil
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch {
		case index >= 0 && row[index] != "":
			i, err := strconv.Atoi(row[index])
			if err != nil {
				return nil, fmt.Errorf("line %d: parameter index %q: %w", line, row[index], err)
			}

			key := mapping.Param{
				Owner:  cell(row, owner),
				Method: cell(row, method),
				Desc:   cell(row, desc),
				Index:  i,
			}
			table.Params[key] = row[to]
		case name >= 0 && row[name] != "":
			table.ParamsByName[row[name]] = row[to]
		}
	}
}

func column(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("column %q not present in header", name)
}

func optionalColumn(header []string, name string) int {
	if name == "" {
		return -1
	}

	for i, h := range header {
		if h == name {
			return i
		}
	}

	return -1
}

func cell(row []string, i int) string {
	if i < 0 {
		return ""
	}

	return row[i]
}
