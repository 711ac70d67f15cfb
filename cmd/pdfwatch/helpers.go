package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdfwatch/pdfwatch/internal/classify"
	"github.com/pdfwatch/pdfwatch/internal/config"
	"github.com/pdfwatch/pdfwatch/internal/extract"
	"github.com/pdfwatch/pdfwatch/internal/llm"
	"github.com/pdfwatch/pdfwatch/internal/metadata"
	"github.com/pdfwatch/pdfwatch/internal/pipeline"
	"github.com/pdfwatch/pdfwatch/internal/rename"
	"github.com/pdfwatch/pdfwatch/internal/service"
	"github.com/pdfwatch/pdfwatch/internal/storage"
)

// buildPipeline assembles the full processing stack from the active
// configuration. history may be nil when auditing is disabled.
func buildPipeline(history service.History) (*pipeline.Pipeline, error) {
	logger := slog.Default()

	configDir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	apiKey, err := llm.LoadAPIKey(configDir)
	if err != nil {
		return nil, fmt.Errorf("no API key configured, run 'pdfwatch auth set': %w", err)
	}

	client, err := llm.NewAnthropicClient(apiKey)
	if err != nil {
		return nil, err
	}

	adapter := llm.NewAdapter(client, llm.Config{
		Model:      viper.GetString("classify.model"),
		Fallback:   viper.GetString("classify.fallback_model"),
		MaxRetries: viper.GetInt("classify.max_retries"),
	}, logger)

	extractor := extract.New(logger)
	classifier := classify.New(adapter, logger, viper.GetBool("classify.adjust_primary"))
	namer := classify.NewNamer(adapter, extractor, logger)
	meta := metadata.New(adapter, logger)
	renamer := rename.New(logger)

	return pipeline.New(extractor, classifier, namer, meta, renamer, history,
		viper.GetInt("naming.max_length"), logger), nil
}

// openHistory opens the audit database at its configured location.
func openHistory() (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("history.database"))
	if dbPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dir, "history.db")
	}
	return storage.NewSQLiteStorage(dbPath)
}
