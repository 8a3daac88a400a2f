package main

import (
	"github.com/spf13/cobra"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP import server",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := server.LoadConfig()
		if err != nil {
			return err
		}
		if dbPath != "" {
			config.DatabasePath = dbPath
		}
		if keywordsPath != "" {
			config.KeywordGroupsPath = keywordsPath
		}

		db, err := database.NewDBWithConfig(config.DatabasePath, database.DBConfig{
			MaxOpenConns:    config.MaxOpenConns,
			MaxIdleConns:    config.MaxIdleConns,
			ConnMaxLifetime: config.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		srv, err := server.NewServer(db, config)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}
