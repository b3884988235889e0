package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

const defaultPoolSize = 10

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db     DBTX
	pool   *pgxpool.Pool
	cipher TokenCipher
}

// Option configures a PostgresStore.
type Option func(*PostgresStore)

// WithTokenCipher encrypts tokens at rest with c.
func WithTokenCipher(c TokenCipher) Option {
	return func(s *PostgresStore) {
		s.cipher = c
	}
}

// NewPostgresStore creates a PostgresStore with connection pooling.
func NewPostgresStore(
	ctx context.Context,
	connString string,
	poolSize int,
	opts ...Option,
) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	cfg.MaxConns = int32(poolSize) //nolint:gosec // bounded by config

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := NewPostgresStoreWithDB(pool, opts...)
	s.pool = pool
	return s, nil
}

// NewPostgresStoreWithDB creates a PostgresStore over an existing DBTX.
// Used with pgxmock in unit tests.
func NewPostgresStoreWithDB(db DBTX, opts ...Option) *PostgresStore {
	s := &PostgresStore{db: db, cipher: PlaintextCipher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close shuts down the connection pool if the store owns one.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.db)
}

// GetConnection returns the connection for a user and marketplace.
func (s *PostgresStore) GetConnection(
	ctx context.Context,
	userID string,
	marketplaceID int,
) (*domain.Connection, error) {
	c, err := s.scanConnection(s.db.QueryRow(ctx, queryGetConnection, userID, marketplaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting connection: %w", err)
	}
	return c, nil
}

// ListConnectionsByUser returns all connections for a user ordered by
// marketplace id.
func (s *PostgresStore) ListConnectionsByUser(
	ctx context.Context,
	userID string,
) ([]domain.Connection, error) {
	return s.queryConnections(ctx, "listing connections", queryListConnectionsByUser, userID)
}

// ListExpiringConnections returns active connections expiring before t.
func (s *PostgresStore) ListExpiringConnections(
	ctx context.Context,
	before time.Time,
) ([]domain.Connection, error) {
	return s.queryConnections(ctx, "listing expiring connections", queryListExpiringConnections, before)
}

// UpsertConnection atomically inserts or overwrites a connection.
func (s *PostgresStore) UpsertConnection(ctx context.Context, c *domain.Connection) error {
	access, err := s.sealNullable(c.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := s.sealNullable(c.RefreshToken)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, queryUpsertConnection,
		c.UserID,
		c.MarketplaceID,
		string(c.Status),
		access,
		refresh,
		c.TokenExpiresAt,
		c.LastSyncAt,
		c.ErrorMessage,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting connection: %w", err)
	}
	return nil
}

// SetStatus upserts the status fields of a connection.
func (s *PostgresStore) SetStatus(ctx context.Context, u StatusUpdate) error {
	_, err := s.db.Exec(ctx, querySetStatus,
		u.UserID,
		u.MarketplaceID,
		string(u.Status),
		u.ErrorMessage,
		u.LastSyncAt,
		u.ClearTokens,
	)
	if err != nil {
		return fmt.Errorf("setting connection status: %w", err)
	}
	return nil
}

// UpdateTokens replaces tokens on an active connection.
func (s *PostgresStore) UpdateTokens(ctx context.Context, u TokenUpdate) (bool, error) {
	access, err := s.sealNullable(u.AccessToken)
	if err != nil {
		return false, err
	}
	refresh, err := s.sealNullable(u.RefreshToken)
	if err != nil {
		return false, err
	}

	tag, err := s.db.Exec(ctx, queryUpdateTokens,
		u.UserID,
		u.MarketplaceID,
		access,
		refresh,
		u.TokenExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("updating connection tokens: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRefreshFailed disconnects an active connection left untouched since
// the failed refresh read it.
func (s *PostgresStore) MarkRefreshFailed(ctx context.Context, f RefreshFailure) (bool, error) {
	tag, err := s.db.Exec(ctx, queryMarkRefreshFailed,
		f.UserID,
		f.MarketplaceID,
		f.ErrorMessage,
		f.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("recording refresh failure: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) queryConnections(
	ctx context.Context,
	op, sql string,
	args ...any,
) ([]domain.Connection, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Connection
	for rows.Next() {
		c, err := s.scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *PostgresStore) scanConnection(row pgx.Row) (*domain.Connection, error) {
	var (
		c       domain.Connection
		status  string
		access  *string
		refresh *string
	)

	if err := row.Scan(
		&c.ID, &c.UserID, &c.MarketplaceID, &status,
		&access, &refresh, &c.TokenExpiresAt, &c.LastSyncAt, &c.ErrorMessage,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = domain.ConnectionStatus(status)

	var err error
	if access != nil {
		if c.AccessToken, err = s.cipher.Decrypt(*access); err != nil {
			return nil, err
		}
	}
	if refresh != nil {
		if c.RefreshToken, err = s.cipher.Decrypt(*refresh); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// sealNullable encrypts v, mapping the empty string to SQL NULL.
func (s *PostgresStore) sealNullable(v string) (*string, error) {
	if v == "" {
		return nil, nil
	}
	sealed, err := s.cipher.Encrypt(v)
	if err != nil {
		return nil, fmt.Errorf("encrypting token: %w", err)
	}
	return &sealed, nil
}
