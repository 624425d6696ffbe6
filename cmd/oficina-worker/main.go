package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"oficina/internal/amqp"
	"oficina/internal/cache"
	"oficina/internal/cli"
	"oficina/internal/config"
	"oficina/internal/log"
	"oficina/internal/sheets"
	gsheet "oficina/internal/sheets/google"
	"oficina/internal/sheets/memory"
	"oficina/internal/storage"
	"oficina/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Stdout)
	logger.Info("Starting oficina-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	cacheManager := cache.NewManager(logger)
	ledger, err := newLedger(ctx, cfg, logger, cacheManager)
	if err != nil {
		logger.Error("Failed to initialize ledger mirror", log.FieldError, err)
		os.Exit(1)
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(worker.NewRecordSource(storage.NewRepositories(store)), ledger, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.BackfillOnStart {
		g.Go(func() error {
			n, err := mirror.Backfill(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				// Events keep flowing; a partial backfill is not fatal.
				logger.Error("Startup backfill incomplete", log.FieldError, err, log.FieldRows, n)
			}
			return nil
		})
	}

	g.Go(func() error {
		return amqpClient.ConsumeRecordEvents(gctx, mirror.HandleRecordEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("oficina-worker stopped", log.FieldOperation, log.OpShutdown)
}

// newLedger selects the mirror backend. The sheets backend registers its
// row-index cache with the manager.
func newLedger(ctx context.Context, cfg *config.Config, logger *log.Logger, manager *cache.Manager) (sheets.LedgerWriter, error) {
	if cfg.MirrorBackend != config.MirrorSheets {
		logger.Info("Mirroring into memory ledger")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		CacheSize:       cfg.RowCacheSize,
		CacheTTL:        cfg.RowCacheTTL,
	}, logger)
	if err != nil {
		return nil, err
	}
	manager.Register(client.RowCache())
	logger.Info("Mirroring into Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
