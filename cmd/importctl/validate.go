package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/importer"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

var (
	validateMapFlags []string
	filterFlag       string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv|file.xlsx>",
	Short: "Screen a client spreadsheet without importing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		_, mapping, results, err := loadAndValidate(db, args[0], validateMapFlags)
		if err != nil {
			return err
		}

		printMapping(mapping)
		printResults(results, importer.FilterMode(filterFlag))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringArrayVar(&validateMapFlags, "map", nil, "column mapping override, header=field (repeatable)")
	validateCmd.Flags().StringVar(&filterFlag, "filter", "all", "rows to print: all, errors, warnings, included")
}

// parseSpreadsheet opens and parses a CSV or XLSX file from disk.
func parseSpreadsheet(path string) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := tabular.ParseFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// loadAndValidate parses a spreadsheet and screens it against the store.
// overrides are operator --map pairs applied before inference.
func loadAndValidate(db *database.DB, path string, overrides []string) (*tabular.Table, *importer.Mapping, []*importer.Result, error) {
	table, err := parseSpreadsheet(path)
	if err != nil {
		return nil, nil, nil, err
	}

	mapping := importer.NewMapping(table.Headers)
	for _, pair := range overrides {
		header, name, found := strings.Cut(pair, "=")
		if !found {
			return nil, nil, nil, fmt.Errorf("invalid --map %q, expected header=field", pair)
		}
		field, err := importer.ParseField(name)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid --map %q: %w", pair, err)
		}
		mapping.Set(header, field)
	}

	inferencer, err := buildInferencer()
	if err != nil {
		return nil, nil, nil, err
	}
	mapping = inferencer.Infer(table.Headers, mapping)

	clients, err := db.ListClients()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load client snapshot: %w", err)
	}
	owners, err := db.ListOwners()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load advisors: %w", err)
	}

	validator := importer.NewValidator(clients, reconcile.BuildOwnerDirectory(owners))
	return table, mapping, validator.Validate(table.Rows, mapping), nil
}

func printMapping(mapping *importer.Mapping) {
	fmt.Println("Column mapping:")
	for _, header := range mapping.Headers() {
		field := mapping.Field(header)
		if field == importer.FieldIgnore {
			fmt.Printf("  %-30s (ignored)\n", header)
			continue
		}
		fmt.Printf("  %-30s -> %s\n", header, field)
	}
	fmt.Println()
}

func printResults(results []*importer.Result, mode importer.FilterMode) {
	selection := importer.NewSelection(results)

	errors, warnings, included := 0, 0, 0
	for _, result := range results {
		if result.HasError() {
			errors++
		}
		if result.HasWarning() {
			warnings++
		}
		if result.Included {
			included++
		}
	}

	for _, result := range selection.Filter(mode) {
		if len(result.Issues) == 0 {
			continue
		}
		for _, issue := range result.Issues {
			fmt.Printf("  row %d [%s] %s\n", result.RowIndex+1, issue.Severity, issue.Message)
		}
	}

	fmt.Printf("\n%d rows: %d importable, %d with errors, %d with warnings\n",
		len(results), included, errors, warnings)
}
