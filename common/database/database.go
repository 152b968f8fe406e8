package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

type Options struct {
	// DSN is either a clickhouse:// URL or a comma separated host:port list.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	Username        string
	Password        string
	Database        string
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	chOpts, err := clickhouseOptions(opts)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	logger.Info("connected to clickhouse",
		zap.Strings("addr", chOpts.Addr),
		zap.String("database", chOpts.Auth.Database))

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

func clickhouseOptions(opts Options) (*clickhouse.Options, error) {
	var chOpts *clickhouse.Options
	if strings.HasPrefix(opts.DSN, "clickhouse://") {
		parsed, err := clickhouse.ParseDSN(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse clickhouse dsn: %w", err)
		}
		chOpts = parsed
	} else {
		host := strings.Split(opts.DSN, "?")[0]
		chOpts = &clickhouse.Options{
			Protocol: clickhouse.Native,
			Addr:     strings.Split(host, ","),
			Auth: clickhouse.Auth{
				Database: opts.Database,
				Username: opts.Username,
				Password: opts.Password,
			},
		}
	}

	if chOpts.Settings == nil {
		chOpts.Settings = clickhouse.Settings{}
	}
	chOpts.Settings["max_execution_time"] = 60

	chOpts.DialTimeout = opts.DialTimeout
	if chOpts.DialTimeout <= 0 {
		chOpts.DialTimeout = 30 * time.Second
	}
	chOpts.MaxOpenConns = opts.MaxOpenConns
	chOpts.MaxIdleConns = opts.MaxIdleConns
	chOpts.ConnMaxLifetime = opts.ConnMaxLifetime
	return chOpts, nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
