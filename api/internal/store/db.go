package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

var ErrNotFound = sql.ErrNoRows

//go:embed schema.sql
var schema string

// Open connects to Postgres through the pgx stdlib driver and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("store: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables used by the repos when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Repos bundles the repositories over one connection pool.
type Repos struct {
	*ProfileRepo
	*ReportRepo
	*ChatRepo
}

func NewRepos(db *sql.DB) *Repos {
	return &Repos{
		ProfileRepo: NewProfileRepo(db),
		ReportRepo:  NewReportRepo(db),
		ChatRepo:    NewChatRepo(db),
	}
}

// Summary describes a DSN for logs without the password.
func Summary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "dsn: unparsable"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, u.User.Username())
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, u.User.Username())
}
