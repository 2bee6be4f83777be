package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"route-insights-go/internal/config"
	"route-insights-go/internal/extractor"
	"route-insights-go/internal/logger"
	"route-insights-go/internal/pipeline"
	"route-insights-go/internal/sheet"
	"route-insights-go/internal/transcript"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New().WithRun().WithField("service", "route-insights-go")
	log.Info("starting route analysis run")

	if err := run(context.Background(), log); err != nil {
		log.WithError(err).Error("run failed")
		os.Exit(1)
	}
	log.Info("route analysis run finished")
}

func run(ctx context.Context, log *logrus.Entry) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	var store sheet.Store
	switch cfg.Backend {
	case config.BackendGoogle:
		credFile, err := writeCredentialFile(cfg.ServiceAccountKey)
		if err != nil {
			return err
		}
		// The key must not outlive the run, whatever happens below.
		defer func() {
			if err := os.Remove(credFile); err != nil {
				log.WithError(err).Warn("failed to remove credential file")
			}
		}()
		store, err = sheet.NewGoogleStore(ctx, cfg.SpreadsheetID, cfg.Worksheet, credFile)
		if err != nil {
			return err
		}
		log.WithField("spreadsheet_id", cfg.SpreadsheetID).Info("using google sheets backend")
	case config.BackendExcel:
		store = sheet.NewExcelStore(cfg.WorkbookPath, cfg.Worksheet)
		log.WithField("workbook", cfg.WorkbookPath).Info("using local workbook backend")
	}

	gemini, err := extractor.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer gemini.Close()

	p := pipeline.New(
		store,
		transcript.NewClient(cfg.Languages),
		extractor.New(gemini),
		cfg.Layout(),
	)

	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"rows":    sum.Rows,
		"written": sum.Written,
		"skipped": sum.Skipped,
		"failed":  sum.Failed,
		"applied": sum.Applied,
	}).Info("run summary")
	return nil
}

// writeCredentialFile materializes the inline service-account JSON as a temp
// file; the Sheets client wants a path. The caller removes it on every exit
// path.
func writeCredentialFile(key string) (string, error) {
	f, err := os.CreateTemp("", "sa-key-*.json")
	if err != nil {
		return "", fmt.Errorf("create credential file: %w", err)
	}
	if _, err := f.WriteString(key); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write credential file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close credential file: %w", err)
	}
	return f.Name(), nil
}
