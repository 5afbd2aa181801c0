// Package srg parses the line-oriented four-record mapping format into a
// mapping.Table. Records are one per line:
//
//	PK: source/pkg target/pkg
//	CL: source/Class target/Class
//	FD: source/Class/field target/Class/field
//	MD: source/Class/method (I)V target/Class/method (I)V
//
// Package records carry no information the class records do not already
// imply and are skipped. Blank lines and lines starting with '#' are
// ignored.
package srg

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"reclass.dev/pkg/reclass/internal/mapping"
)

// Parse reads the full stream and returns the accumulated table. Malformed
// records are reported with their line number; parsing stops at the first
// such record.
func Parse(r io.Reader) (*mapping.Table, error) {
	table := mapping.NewTable()
	scanner := bufio.NewScanner(r)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		kind, rest, found := strings.Cut(text, " ")
		if !found {
			return nil, fmt.Errorf("line %d: malformed record %q", line, text)
		}

		fields := strings.Fields(rest)

		var err error

		switch kind {
		case "PK:":
			// Package renames are implied by the class records.
		case "CL:":
			err = parseClass(table, fields)
		case "FD:":
			err = parseField(table, fields)
		case "MD:":
			err = parseMethod(table, fields)
		default:
			err = fmt.Errorf("unknown record type %q", kind)
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}

	return table, nil
}

func parseClass(t *mapping.Table, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("class record needs 2 names, got %d", len(fields))
	}

	t.Classes[fields[0]] = fields[1]

	return nil
}

func parseField(t *mapping.Table, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("field record needs 2 qualified names, got %d", len(fields))
	}

	owner, name, err := splitQualified(fields[0])
	if err != nil {
		return err
	}

	_, target, err := splitQualified(fields[1])
	if err != nil {
		return err
	}

	t.Fields[mapping.Member{Owner: owner, Name: name}] = target

	return nil
}

func parseMethod(t *mapping.Table, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("method record needs 2 qualified names with descriptors, got %d fields", len(fields))
	}

	owner, name, err := splitQualified(fields[0])
	if err != nil {
		return err
	}

	_, target, err := splitQualified(fields[2])
	if err != nil {
		return err
	}

	t.Methods[mapping.Member{Owner: owner, Name: name, Desc: fields[1]}] = target

	return nil
}

// splitQualified splits a fully qualified member name into its owning class
// and simple name at the last separator.
func splitQualified(qualified string) (owner, name string, err error) {
	i := strings.LastIndexByte(qualified, '/')
	if i <= 0 || i == len(qualified)-1 {
		return "", "", fmt.Errorf("malformed qualified name %q", qualified)
	}

	return qualified[:i], qualified[i+1:], nil
}
