package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/importer"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

var (
	importMapFlags  []string
	excludeRows     []int
	excludeWarnings bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Validate a client spreadsheet and create the accepted rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		table, mapping, results, err := loadAndValidate(db, args[0], importMapFlags)
		if err != nil {
			return err
		}

		selection := importer.NewSelection(results)
		if excludeWarnings {
			selection.ExcludeAllWarnings()
		}
		for _, index := range excludeRows {
			// Operator flags are 1-based like the printed report.
			selection.ToggleRange(index-1, index-1, false)
		}

		accepted := make([]tabular.RawRecord, 0, len(results))
		for _, result := range selection.Results() {
			if result.Included {
				accepted = append(accepted, result.Row)
			}
		}
		if len(accepted) == 0 {
			return fmt.Errorf("no importable rows in %s", args[0])
		}

		owners, err := db.ListOwners()
		if err != nil {
			return fmt.Errorf("failed to load advisors: %w", err)
		}

		run, err := db.StartImportRun("clients")
		if err != nil {
			return err
		}

		executor := importer.NewExecutor(reconcile.BuildOwnerDirectory(owners), func(c *database.Client) (string, error) {
			return db.CreateClient(c)
		})
		executor.OnProgress(func(processed, total int) {
			fmt.Printf("\r%d/%d", processed, total)
		})

		report, err := executor.Run(cmd.Context(), accepted, mapping)
		fmt.Println()
		if err != nil {
			return err
		}

		skipped := len(table.Rows) - report.Created - report.Unresolved - report.Failed
		if err := db.CompleteImportRun(run.ID, len(table.Rows), report.Created, skipped, report.Unresolved, report.Failed); err != nil {
			return err
		}

		fmt.Printf("Run %s: %d created, %d skipped, %d unresolved, %d failed of %d rows\n",
			run.RunUUID, report.Created, skipped, report.Unresolved, report.Failed, len(table.Rows))
		return nil
	},
}

func init() {
	importCmd.Flags().StringArrayVar(&importMapFlags, "map", nil, "column mapping override, header=field (repeatable)")
	importCmd.Flags().IntSliceVar(&excludeRows, "exclude", nil, "1-based row numbers to leave out")
	importCmd.Flags().BoolVar(&excludeWarnings, "exclude-warnings", false, "leave out rows that carry warnings")
}
