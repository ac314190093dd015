package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Layr-Labs/social-custody-go/pkg/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool is the subset of *pgxpool.Pool the store needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS custody_wallets (
		id TEXT PRIMARY KEY,
		encrypted_key TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`

	insertWalletQuery = `INSERT INTO custody_wallets (id, encrypted_key, address, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	selectWalletQuery = `SELECT id, encrypted_key, address, created_at
		FROM custody_wallets WHERE id = $1`
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	ConnMaxLifetime time.Duration
}

// PostgresPersistence stores wallets in a relational table with a primary
// key on the user id, which gives create-only semantics across replicas.
type PostgresPersistence struct {
	pool   Pool
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

var _ persistence.IWalletPersistence = (*PostgresPersistence)(nil)

// NewPostgresPersistence connects, verifies connectivity and ensures the table exists.
func NewPostgresPersistence(ctx context.Context, cfg *PostgresConfig, logger *zap.Logger) (*PostgresPersistence, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN cannot be empty")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pp := NewPostgresPersistenceWithPool(pool, logger)
	if err := pp.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Sugar().Infow("Postgres persistence initialized",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"maxConns", poolCfg.MaxConns,
	)
	return pp, nil
}

func NewPostgresPersistenceWithPool(pool Pool, logger *zap.Logger) *PostgresPersistence {
	return &PostgresPersistence{
		pool:   pool,
		logger: logger,
	}
}

// Migrate creates the wallet table if it does not exist.
func (p *PostgresPersistence) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("create custody_wallets table: %w", err)
	}
	return nil
}

func (p *PostgresPersistence) SaveWallet(ctx context.Context, wallet *persistence.WalletRecord) error {
	if err := wallet.Validate(); err != nil {
		return fmt.Errorf("cannot save wallet: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return persistence.ErrClosed
	}

	tag, err := p.pool.Exec(ctx, insertWalletQuery,
		wallet.Id, wallet.Key, wallet.Address, wallet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrWalletExists
	}
	return nil
}

func (p *PostgresPersistence) GetWallet(ctx context.Context, userId string) (*persistence.WalletRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, persistence.ErrClosed
	}

	w := &persistence.WalletRecord{}
	err := p.pool.QueryRow(ctx, selectWalletQuery, userId).Scan(
		&w.Id, &w.Key, &w.Address, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

func (p *PostgresPersistence) GetEncryptedKey(ctx context.Context, userId string) (string, error) {
	return persistence.GetEncryptedKey(ctx, p, userId)
}

func (p *PostgresPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.pool.Close()

	p.logger.Sugar().Info("Postgres persistence closed")
	return nil
}

func (p *PostgresPersistence) HealthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}
