package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"

	"order-exporter/internal/orderexporter"
	"order-exporter/internal/orderexporter/data/database"
	"order-exporter/internal/orderexporter/inbox"
	"order-exporter/internal/orderexporter/service"
)

const (
	MemoryBackend   = "memory"
	PebbleBackend   = "pebble"
	PostgresBackend = "postgres"
	SQLiteBackend   = "sqlite"
)

type Config struct {
	Server  orderexporter.Config
	Service service.Config
	Storage Storage
	DB      database.Config
	Inbox   inbox.Config
	Journal Journal

	LogLevel        string
	LogEncoding     string
	ShutdownTimeout time.Duration
}

type Storage struct {
	Backend    string
	PebbleDir  string
	SQLitePath string
}

type Journal struct {
	File         string
	KafkaBrokers string
	KafkaTopic   string
}

type environment struct {
	ServerAddress   string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	Backend         string        `env:"STATE_BACKEND" envDefault:"memory"`
	DatabaseURI     string        `env:"DATABASE_URI"`
	PebbleDir       string        `env:"PEBBLE_DIR" envDefault:"data/pebble"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/orders.db"`
	StateKey        string        `env:"STATE_KEY" envDefault:"amazonOrderExporter"`
	InboxDir        string        `env:"INBOX_DIR"`
	InboxScope      string        `env:"INBOX_SCOPE"`
	InboxTick       time.Duration `env:"INBOX_TICK" envDefault:"5s"`
	JournalFile     string        `env:"JOURNAL_FILE"`
	KafkaBrokers    string        `env:"KAFKA_BROKERS"`
	KafkaTopic      string        `env:"KAFKA_TOPIC" envDefault:"orderexporter.merges"`
	YieldDelay      time.Duration `env:"YIELD_DELAY" envDefault:"0s"`
	Cooldown        time.Duration `env:"CAPTURE_COOLDOWN" envDefault:"0s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding     string        `env:"LOG_ENCODING" envDefault:"json"`
}

// Load reads the environment first; command line flags override it.
func Load(args []string) (*Config, error) {
	e := environment{}
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	fs := flag.NewFlagSet("orderexporter", flag.ContinueOnError)
	fs.StringVar(&e.ServerAddress, "a", e.ServerAddress, "Server address host:port")
	fs.StringVar(&e.Backend, "b", e.Backend, "State backend: memory, pebble, postgres or sqlite")
	fs.StringVar(&e.DatabaseURI, "d", e.DatabaseURI, "PostgreSQL connection string")
	fs.StringVar(&e.PebbleDir, "p", e.PebbleDir, "Pebble data directory")
	fs.StringVar(&e.SQLitePath, "s", e.SQLitePath, "SQLite database file")
	fs.StringVar(&e.StateKey, "k", e.StateKey, "Storage key of the default scope")
	fs.StringVar(&e.InboxDir, "i", e.InboxDir, "Directory watched for saved order pages")
	fs.StringVar(&e.InboxScope, "inbox-scope", e.InboxScope, "Scope the inbox captures into")
	fs.DurationVar(&e.InboxTick, "inbox-tick", e.InboxTick, "Inbox polling period")
	fs.StringVar(&e.JournalFile, "j", e.JournalFile, "Merge journal file (jsonl)")
	fs.StringVar(&e.KafkaBrokers, "kafka-brokers", e.KafkaBrokers, "Comma-separated kafka brokers for the merge journal")
	fs.StringVar(&e.KafkaTopic, "kafka-topic", e.KafkaTopic, "Kafka topic for the merge journal")
	fs.DurationVar(&e.YieldDelay, "yield-delay", e.YieldDelay, "Pause between two order fragments")
	fs.DurationVar(&e.Cooldown, "cooldown", e.Cooldown, "Minimum time between two captures of a scope")
	fs.DurationVar(&e.ShutdownTimeout, "shutdown-timeout", e.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&e.LogLevel, "log-level", e.LogLevel, "Log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch e.Backend {
	case MemoryBackend, PebbleBackend, SQLiteBackend:
	case PostgresBackend:
		if e.DatabaseURI == "" {
			return nil, fmt.Errorf("backend %s needs a connection string", e.Backend)
		}
	default:
		return nil, fmt.Errorf("unknown state backend %q", e.Backend)
	}

	return &Config{
		Server: orderexporter.Config{
			ServerAddress:   e.ServerAddress,
			ShutdownTimeout: e.ShutdownTimeout,
		},
		Service: service.Config{
			StateKey:   e.StateKey,
			YieldDelay: e.YieldDelay,
			Cooldown:   e.Cooldown,
		},
		Storage: Storage{
			Backend:    e.Backend,
			PebbleDir:  e.PebbleDir,
			SQLitePath: e.SQLitePath,
		},
		DB: database.Config{
			ConnectionString:   e.DatabaseURI,
			RetryAttemptDelays: []time.Duration{time.Second, 3 * time.Second, 5 * time.Second},
		},
		Inbox: inbox.Config{
			Dir:               e.InboxDir,
			Scope:             e.InboxScope,
			TickPeriod:        e.InboxTick,
			TasksBufferLength: 8,
		},
		Journal: Journal{
			File:         e.JournalFile,
			KafkaBrokers: e.KafkaBrokers,
			KafkaTopic:   e.KafkaTopic,
		},
		LogLevel:        e.LogLevel,
		LogEncoding:     e.LogEncoding,
		ShutdownTimeout: e.ShutdownTimeout,
	}, nil
}
