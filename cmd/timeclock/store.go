package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/timeclock/internal/api/handler"
	"github.com/99minutos/timeclock/internal/core/ports"
	"github.com/99minutos/timeclock/internal/infrastructure/db/mongo"
	"github.com/99minutos/timeclock/internal/infrastructure/db/sqlite"
	"github.com/99minutos/timeclock/internal/pkg/config"
)

// store bundles the repositories of whichever engine STORE_DRIVER selects.
type store struct {
	Users    ports.AuthRepository
	Statuses ports.ClockStatusRepository
	Ledger   ports.ShiftLedger
	Events   ports.ClockEventRepository
	Tx       ports.Transactor
	Check    handler.DependencyCheck
	Close    func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		if !cfg.Mongo.Transactions {
			log.Warn().Msg("mongo transactions disabled; clock-outs rely on version checks only")
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

		return &store{
			Users:    mongo.NewAuthRepository(db),
			Statuses: mongo.NewClockStatusRepository(db),
			Ledger:   mongo.NewShiftLedger(db),
			Events:   mongo.NewClockEventRepository(db),
			Tx:       mongo.NewTransactor(client, cfg.Mongo.Transactions),
			Check: handler.DependencyCheck{Name: "mongodb", Ping: func(ctx context.Context) error {
				return mongo.Ping(ctx, db)
			}},
			Close: client.Disconnect,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.OpenDB(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLite.Path).Msg("opened sqlite database")

		return &store{
			Users:    sqlite.NewAuthRepository(db),
			Statuses: sqlite.NewClockStatusRepository(db),
			Ledger:   sqlite.NewShiftLedger(db),
			Events:   sqlite.NewClockEventRepository(db),
			Tx:       sqlite.NewTransactor(db),
			Check: handler.DependencyCheck{Name: "sqlite", Ping: func(ctx context.Context) error {
				return sqlite.Ping(ctx, db)
			}},
			Close: func(context.Context) error { return db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
