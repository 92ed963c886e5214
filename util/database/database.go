package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DB struct {
	Gorm *gorm.DB
	Pool *pgxpool.Pool
}

func New(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres, "":
		return newPostgres(ctx, dsn)
	case DriverSQLite:
		g, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return &DB{Gorm: g}, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

func newPostgres(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	g, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(p)}), gormConfig())
	if err != nil {
		p.Close()
		return nil, err
	}
	return &DB{Gorm: g, Pool: p}, nil
}

// OpenSQLite opens a sqlite database. The pool is pinned to one
// connection so in-memory databases survive across transactions.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	g, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return g, nil
}

// OpenMemory opens a private in-memory sqlite database and migrates it.
func OpenMemory(name string) (*gorm.DB, error) {
	g, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		return nil, err
	}
	if err := Migrate(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (d *DB) Close() {
	if sqlDB, err := d.Gorm.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("db close", "err", err)
		}
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}
