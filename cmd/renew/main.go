package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"subtrack/internal/config"
	"subtrack/internal/database"
	"subtrack/internal/logger"
	"subtrack/internal/services"
)

// renew processes due subscription renewals once and exits. Intended to be
// run daily from cron or a container scheduler.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Renewal error: %v", err)
	}
}

func run() error {
	dateFlag := flag.String("date", "", "run date in YYYY-MM-DD format (default today)")
	flag.Parse()

	today := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			return fmt.Errorf("invalid -date value %q: %w", *dateFlag, err)
		}
		today = parsed
	}

	if _, err := config.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	renewalService := services.NewRenewalService(dbManager.DB())

	created, skipped, err := renewalService.Run(today)
	if err != nil {
		return fmt.Errorf("renewal run failed after booking %d expense(s): %w", created, err)
	}

	logger.Get().Infow("renewal run finished",
		"date", today.Format("2006-01-02"),
		"created", created,
		"skipped", skipped,
	)
	return nil
}
