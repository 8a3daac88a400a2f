package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/reconcile"
)

var (
	numberCol string
	ownerCol  string
	dateCol   string
	amountCol string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <file.csv|file.xlsx>",
	Short: "Match an invoice batch against the store and create the new ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		table, err := parseSpreadsheet(args[0])
		if err != nil {
			return err
		}

		rows := make([]reconcile.InvoiceRow, 0, len(table.Rows))
		for i, record := range table.Rows {
			amount, err := decimal.NewFromString(record.Value(amountCol))
			if err != nil {
				return fmt.Errorf("row %d: invalid amount %q in column %s", i+1, record.Value(amountCol), amountCol)
			}
			rows = append(rows, reconcile.InvoiceRow{
				Number:    record.Value(numberCol),
				OwnerName: record.Value(ownerCol),
				IssueDate: record.Value(dateCol),
				Amount:    amount,
			})
		}
		if len(rows) == 0 {
			return fmt.Errorf("no invoice rows in %s", args[0])
		}

		owners, err := db.ListOwners()
		if err != nil {
			return fmt.Errorf("failed to load advisors: %w", err)
		}

		run, err := db.StartImportRun("invoices")
		if err != nil {
			return err
		}

		executor := reconcile.NewExecutor(
			db.ListInvoices,
			reconcile.BuildOwnerDirectory(owners),
			func(inv *database.Invoice) (string, error) {
				return db.CreateInvoice(inv)
			},
		)
		executor.OnProgress(func(processed, total int) {
			fmt.Printf("\r%d/%d", processed, total)
		})

		report, err := executor.Run(cmd.Context(), rows)
		fmt.Println()
		if err != nil {
			return err
		}

		for _, outcome := range report.Rows {
			if outcome.Status == reconcile.StatusCreated {
				continue
			}
			fmt.Printf("  row %d [%s] %s\n", outcome.RowIndex+1, outcome.Status, outcome.Detail)
		}

		skipped := report.Identical + report.Conflicts
		if err := db.CompleteImportRun(run.ID, report.Total, report.Created, skipped, report.Unresolved, report.Failed); err != nil {
			return err
		}

		fmt.Printf("Run %s: %d created, %d identical, %d conflicting, %d unresolved, %d failed of %d rows\n",
			run.RunUUID, report.Created, report.Identical, report.Conflicts,
			report.Unresolved, report.Failed, report.Total)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&numberCol, "number-col", "Comprobante", "column holding the invoice number")
	reconcileCmd.Flags().StringVar(&ownerCol, "owner-col", "Asesor", "column holding the advisor name")
	reconcileCmd.Flags().StringVar(&dateCol, "date-col", "Fecha", "column holding the issue date")
	reconcileCmd.Flags().StringVar(&amountCol, "amount-col", "Importe", "column holding the amount")
}
