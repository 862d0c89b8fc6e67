package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"order-exporter/cmd/orderexporter/config"
	"order-exporter/internal/orderexporter"
	"order-exporter/internal/orderexporter/data/database"
	"order-exporter/internal/orderexporter/data/dbrepository"
	"order-exporter/internal/orderexporter/data/dbstorage"
	"order-exporter/internal/orderexporter/data/memstore"
	"order-exporter/internal/orderexporter/data/pebblestore"
	"order-exporter/internal/orderexporter/inbox"
	"order-exporter/internal/orderexporter/journal"
	"order-exporter/internal/orderexporter/metrics"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
	"order-exporter/pkg/pgxstorage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewZapLoggerWithEncoding(level, cfg.LogEncoding)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	store, closeStore, err := openStore(rootCtx, cfg, logger)
	if err != nil {
		logger.ErrorCtx(rootCtx, "failed to open state store", zap.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	journalWriter, closeJournal, err := openJournal(cfg.Journal)
	if err != nil {
		logger.ErrorCtx(rootCtx, "failed to open merge journal", zap.Error(err))
		os.Exit(1)
	}
	defer closeJournal()

	registry := metrics.NewRegistry()
	captureService := service.New(cfg.Service, store, journalWriter, registry, nil, logger)
	server := orderexporter.NewServer(cfg.Server, captureService, registry.Handler(), logger)

	var monitor *inbox.Monitor
	if cfg.Inbox.Dir != "" {
		monitor = inbox.NewMonitor(cfg.Inbox, captureService, logger)
	}

	logger.InfoCtx(rootCtx, "order exporter starting",
		zap.String("address", cfg.Server.ServerAddress),
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("inbox", monitor != nil),
	)
	if err := run(rootCtx, cfg, server, monitor, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.ZapLogger) (service.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.PebbleBackend:
		store, err := pebblestore.New(cfg.Storage.PebbleDir)
		if err != nil {
			return nil, nil, err
		}
		return store, closer(ctx, store.Close, logger), nil
	case config.SQLiteBackend:
		store, err := dbstorage.New(dbstorage.NewSQLiteFactory(cfg.Storage.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		return store, closer(ctx, store.Close, logger), nil
	case config.PostgresBackend:
		storage, err := pgxstorage.New(ctx, database.NewPgxDatabaseFactory(cfg.DB, logger))
		if err != nil {
			return nil, nil, err
		}
		repository := dbrepository.New(storage, pgxstorage.NewTransactionsManager(storage), logger)
		return repository, storage.Close, nil
	}
	return memstore.New(), func() {}, nil
}

func openJournal(cfg config.Journal) (service.JournalWriter, func(), error) {
	writers := make([]journal.Writer, 0, 2)
	closeFn := func() {}
	if cfg.File != "" {
		w, err := journal.NewFileWriter(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, w)
	}
	if cfg.KafkaBrokers != "" {
		w := journal.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		writers = append(writers, w)
		closeFn = func() { _ = w.Close() }
	}
	if len(writers) == 0 {
		return journal.Nop{}, closeFn, nil
	}
	return journal.NewMultiWriter(writers...), closeFn, nil
}

func closer(ctx context.Context, f func() error, logger *logging.ZapLogger) func() {
	return func() {
		if err := f(); err != nil {
			logger.ErrorCtx(ctx, "failed to close state store", zap.Error(err))
		}
	}
}

func run(
	rootCtx context.Context,
	cfg *config.Config,
	server *orderexporter.Server,
	monitor *inbox.Monitor,
	logger *logging.ZapLogger,
) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if monitor != nil {
		g.Go(func() error {
			if err := monitor.Run(); err != nil {
				return fmt.Errorf("inbox monitor error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		if monitor != nil {
			monitor.Stop()
		}
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
