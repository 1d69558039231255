package main

import (
	"context"
	"fmt"
	"os"

	"leadcrm-backend/config"
	"leadcrm-backend/logger"
	"leadcrm-backend/models"
	"leadcrm-backend/repository"
	"leadcrm-backend/rowstore"

	"go.uber.org/zap"
)

// create-schema writes the header row of every sheet. Against Postgres it also
// creates the backing table.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, "create-schema")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	store, closeStore, err := rowstore.Open(ctx, rowstore.OpenConfig{
		Type:        cfg.Store.Type,
		DatabaseURL: cfg.Store.DatabaseURL,
		Sheets: rowstore.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			CredentialsFile: cfg.Sheets.CredentialsFile,
		},
		MemorySheets: models.SheetNames(),
	})
	if err != nil {
		log.Fatal("Failed to open row store", zap.Error(err))
	}
	defer closeStore()

	if err := repository.WriteHeaders(ctx, store); err != nil {
		log.Fatal("Failed to write headers", zap.Error(err))
	}

	for _, sheet := range models.SheetNames() {
		log.Info("Header written",
			zap.String("sheet", sheet),
			zap.Int("columns", len(models.Headers[sheet])),
		)
	}
	fmt.Printf("Schema ready on %s row store (%d sheets)\n", cfg.Store.Type, len(models.Headers))
}
