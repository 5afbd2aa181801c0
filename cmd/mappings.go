package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/viant/afs"

	"reclass.dev/pkg/reclass/internal/mapping"
	"reclass.dev/pkg/reclass/internal/mapping/csvmap"
	"reclass.dev/pkg/reclass/internal/mapping/srg"
)

// Column layout of csv mapping tables, overridable through config/env so
// exports from different tools load without preprocessing.
const (
	csvFromKey       = "csv.from"
	csvToKey         = "csv.to"
	csvOwnerKey      = "csv.owner"
	csvDescKey       = "csv.desc"
	csvParamNameKey  = "csv.param_name"
	csvParamIndexKey = "csv.param_index"
)

func init() {
	viper.SetDefault(csvFromKey, "from")
	viper.SetDefault(csvToKey, "to")
	viper.SetDefault(csvOwnerKey, "")
	viper.SetDefault(csvDescKey, "")
	viper.SetDefault(csvParamNameKey, "name")
	viper.SetDefault(csvParamIndexKey, "")
}

func readFile(ctx context.Context, location string) ([]byte, error) {
	data, err := afs.New().DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}

	return data, nil
}

func csvOptions() csvmap.Options {
	return csvmap.Options{
		From:  viper.GetString(csvFromKey),
		To:    viper.GetString(csvToKey),
		Owner: viper.GetString(csvOwnerKey),
		Desc:  viper.GetString(csvDescKey),
	}
}

// buildNameMapping assembles the rename delegation chain in flag order: srg
// files first, csv tables after, later stages seeing earlier renames.
func buildNameMapping(ctx context.Context) (mapping.Chain, error) {
	var chain mapping.Chain

	for _, file := range mappingFiles {
		data, err := readFile(ctx, file)
		if err != nil {
			return nil, err
		}

		table, err := srg.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		chain = append(chain, table)
	}

	type csvTable struct {
		file  string
		parse func(*bytes.Reader) (*mapping.Table, error)
	}

	tables := []csvTable{
		{csvClassesFlag, func(r *bytes.Reader) (*mapping.Table, error) { return csvmap.Classes(r, csvOptions()) }},
		{csvFieldsFlag, func(r *bytes.Reader) (*mapping.Table, error) { return csvmap.Fields(r, csvOptions()) }},
		{csvMethodsFlag, func(r *bytes.Reader) (*mapping.Table, error) { return csvmap.Methods(r, csvOptions()) }},
		{csvParamsFlag, func(r *bytes.Reader) (*mapping.Table, error) {
			return csvmap.Parameters(r, csvmap.ParameterOptions{
				Name:  viper.GetString(csvParamNameKey),
				Index: viper.GetString(csvParamIndexKey),
				To:    viper.GetString(csvToKey),
			})
		}},
	}

	for _, t := range tables {
		if t.file == "" {
			continue
		}

		data, err := readFile(ctx, t.file)
		if err != nil {
			return nil, err
		}

		table, err := t.parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.file, err)
		}

		chain = append(chain, table)
	}

	return chain, nil
}

func buildAccessMapping(ctx context.Context) (mapping.AccessChain, error) {
	var chain mapping.AccessChain

	for _, file := range accessMapFiles {
		data, err := readFile(ctx, file)
		if err != nil {
			return nil, err
		}

		opts := csvmap.AccessOptions{
			Owner: viper.GetString(csvOwnerKey),
			Desc:  viper.GetString(csvDescKey),
		}

		table, err := csvmap.Access(bytes.NewReader(data), opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		chain = append(chain, table)
	}

	return chain, nil
}
