package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"horoscope/internal/logger"
)

// EnsureDatabase creates the target database through the server's
// maintenance database when it is missing.
func EnsureDatabase(ctx context.Context, connString string) error {
	admin, name, err := maintenanceDSN(connString)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	conn, err := sql.Open("postgres", admin)
	if err != nil {
		return fmt.Errorf("open maintenance database: %w", err)
	}
	defer conn.Close()

	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRowContext(ctx, q, name).Scan(&exists); err != nil {
		return fmt.Errorf("look up database %q: %w", name, err)
	}
	if exists {
		return nil
	}

	log := logger.Named("db")
	// CREATE DATABASE cannot take bind parameters.
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create database %q: %w", name, err)
	}
	log.Info("database created", zap.String("database", name))
	return nil
}

// maintenanceDSN points connString at the "postgres" database and returns
// the database name it originally named. Both URL and key=value forms are
// accepted.
func maintenanceDSN(connString string) (dsn, name string, err error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", "", err
		}
		name = strings.TrimPrefix(u.Path, "/")
		u.Path = "/postgres"
		dsn = u.String()
	} else {
		fields := strings.Fields(connString)
		for i, f := range fields {
			if v, ok := strings.CutPrefix(f, "dbname="); ok {
				name = v
				fields[i] = "dbname=postgres"
			}
		}
		dsn = strings.Join(fields, " ")
	}
	if name == "" {
		return "", "", errors.New("no database name in connection string")
	}
	return dsn, name, nil
}
