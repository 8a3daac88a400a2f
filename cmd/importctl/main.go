// importctl drives the client import and invoice reconciliation
// pipelines from the command line, against the same store the HTTP
// server uses.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/importer"
)

const version = "1.2.0"

var (
	dbPath       string
	keywordsPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "importctl",
	Short: "CRM bulk import and invoice reconciliation tool",
	Long: `importctl validates and imports client spreadsheets and reconciles
invoice batches against the CRM entity store.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Library logging is noise for one-shot commands.
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the importctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("importctl %s\n", version)
	},
}

func openDB() (*database.DB, error) {
	db, err := database.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return db, nil
}

func buildInferencer() (*importer.Inferencer, error) {
	if keywordsPath == "" {
		return importer.NewInferencer(), nil
	}
	return importer.NewInferencerFromFile(keywordsPath)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "crm.db", "path to the entity store")
	rootCmd.PersistentFlags().StringVar(&keywordsPath, "keywords", "", "YAML file with custom header keyword groups")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
