package db

import (
	"context"
	"fmt"
	"net/url"

	"pos-analytics/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// DSN builds the postgres connection URL for cfg.
func DSN(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

func Init(cfg config.DBConfig) error {
	var err error
	Pool, err = pgxpool.New(context.Background(), DSN(cfg))
	if err != nil {
		return err
	}
	if err := Pool.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
