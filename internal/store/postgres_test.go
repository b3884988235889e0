package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-connections/internal/store"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

var connColumns = []string{
	"id", "user_id", "marketplace_id", "connection_status",
	"access_token", "refresh_token", "token_expires_at", "last_sync_at", "error_message",
	"created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.Close()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestPostgresStore_GetConnection(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(2 * time.Hour)
	refresh := "refresh-1"

	tests := []struct {
		name    string
		setup   func(m pgxmock.PgxPoolIface)
		want    *domain.Connection
		wantErr error
	}{
		{
			name: "found with tokens",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT id, user_id, marketplace_id`).
					WithArgs("user-1", 1).
					WillReturnRows(pgxmock.NewRows(connColumns).AddRow(
						"c-1", "user-1", 1, "active",
						strPtr("access-1"), &refresh, &expires, &now, nil,
						now, now,
					))
			},
			want: &domain.Connection{
				ID:             "c-1",
				UserID:         "user-1",
				MarketplaceID:  1,
				Status:         domain.StatusActive,
				AccessToken:    "access-1",
				RefreshToken:   "refresh-1",
				TokenExpiresAt: &expires,
				LastSyncAt:     &now,
				CreatedAt:      now,
				UpdatedAt:      now,
			},
		},
		{
			name: "disconnected without tokens",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT id, user_id, marketplace_id`).
					WithArgs("user-1", 1).
					WillReturnRows(pgxmock.NewRows(connColumns).AddRow(
						"c-1", "user-1", 1, "disconnected",
						nil, nil, nil, nil, strPtr("revoked"),
						now, now,
					))
			},
			want: &domain.Connection{
				ID:            "c-1",
				UserID:        "user-1",
				MarketplaceID: 1,
				Status:        domain.StatusDisconnected,
				ErrorMessage:  strPtr("revoked"),
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		{
			name: "not found",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT id, user_id, marketplace_id`).
					WithArgs("user-1", 1).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMockPool(t)
			tt.setup(m)
			s := store.NewPostgresStoreWithDB(m)

			got, err := s.GetConnection(context.Background(), "user-1", 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostgresStore_GetConnection_QueryError(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectQuery(`SELECT id, user_id, marketplace_id`).
		WithArgs("user-1", 2).
		WillReturnError(errors.New("connection reset"))

	s := store.NewPostgresStoreWithDB(m)
	_, err := s.GetConnection(context.Background(), "user-1", 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "getting connection")
}

func TestPostgresStore_ListConnectionsByUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newMockPool(t)
	m.ExpectQuery(`FROM marketplace_connections\s+WHERE user_id = \$1\s+ORDER BY marketplace_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(connColumns).
			AddRow("c-1", "user-1", 1, "active", strPtr("a"), nil, nil, &now, nil, now, now).
			AddRow("c-2", "user-1", 2, "pending", nil, nil, nil, nil, nil, now, now))

	s := store.NewPostgresStoreWithDB(m)
	got, err := s.ListConnectionsByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusActive, got[0].Status)
	assert.Equal(t, "a", got[0].AccessToken)
	assert.Equal(t, domain.StatusPending, got[1].Status)
	assert.Empty(t, got[1].AccessToken)
}

func TestPostgresStore_ListExpiringConnections(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(5 * time.Minute)
	soon := now.Add(time.Minute)

	m := newMockPool(t)
	m.ExpectQuery(`connection_status = 'active'\s+AND token_expires_at IS NOT NULL\s+AND token_expires_at <= \$1`).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows(connColumns).
			AddRow("c-1", "user-1", 1, "active", strPtr("a"), strPtr("r"), &soon, nil, nil, now, now))

	s := store.NewPostgresStoreWithDB(m)
	got, err := s.ListExpiringConnections(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r", got[0].RefreshToken)
	assert.Equal(t, soon, *got[0].TokenExpiresAt)
}

func TestPostgresStore_UpsertConnection(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)

	m := newMockPool(t)
	m.ExpectQuery(`INSERT INTO marketplace_connections .* ON CONFLICT \(user_id, marketplace_id\) DO UPDATE`).
		WithArgs("user-1", 1, "active", strPtr("access"), pgxmock.AnyArg(), &expires, &now, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("c-1", now, now))

	s := store.NewPostgresStoreWithDB(m)
	c := &domain.Connection{
		UserID:         "user-1",
		MarketplaceID:  1,
		Status:         domain.StatusActive,
		AccessToken:    "access",
		TokenExpiresAt: &expires,
		LastSyncAt:     &now,
	}
	require.NoError(t, s.UpsertConnection(context.Background(), c))
	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, now, c.CreatedAt)
}

func TestPostgresStore_UpsertConnection_EncryptsTokens(t *testing.T) {
	t.Parallel()

	aesCipher, err := store.NewAESCipher(testKey())
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newMockPool(t)
	m.ExpectQuery(`INSERT INTO marketplace_connections`).
		WithArgs("user-1", 1, "active", encryptedArg{}, encryptedArg{}, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("c-1", now, now))

	s := store.NewPostgresStoreWithDB(m, store.WithTokenCipher(aesCipher))
	c := &domain.Connection{
		UserID:        "user-1",
		MarketplaceID: 1,
		Status:        domain.StatusActive,
		AccessToken:   "plain-access",
		RefreshToken:  "plain-refresh",
	}
	require.NoError(t, s.UpsertConnection(context.Background(), c))
}

func TestPostgresStore_GetConnection_DecryptsTokens(t *testing.T) {
	t.Parallel()

	aesCipher, err := store.NewAESCipher(testKey())
	require.NoError(t, err)
	sealed, err := aesCipher.Encrypt("plain-access")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newMockPool(t)
	m.ExpectQuery(`SELECT id, user_id, marketplace_id`).
		WithArgs("user-1", 1).
		WillReturnRows(pgxmock.NewRows(connColumns).AddRow(
			"c-1", "user-1", 1, "active", &sealed, strPtr("legacy-plain"), nil, nil, nil, now, now,
		))

	s := store.NewPostgresStoreWithDB(m, store.WithTokenCipher(aesCipher))
	got, err := s.GetConnection(context.Background(), "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "plain-access", got.AccessToken)
	assert.Equal(t, "legacy-plain", got.RefreshToken)
}

func TestPostgresStore_SetStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "Token refresh failed: invalid_grant"

	tests := []struct {
		name   string
		update store.StatusUpdate
		args   []any
	}{
		{
			name: "active with sync time",
			update: store.StatusUpdate{
				UserID: "user-1", MarketplaceID: 1, Status: domain.StatusActive, LastSyncAt: &now,
			},
			args: []any{"user-1", 1, "active", pgxmock.AnyArg(), &now, false},
		},
		{
			name: "disconnect and clear tokens",
			update: store.StatusUpdate{
				UserID: "user-1", MarketplaceID: 2, Status: domain.StatusDisconnected,
				ErrorMessage: &msg, ClearTokens: true,
			},
			args: []any{"user-1", 2, "disconnected", &msg, pgxmock.AnyArg(), true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMockPool(t)
			m.ExpectExec(`INSERT INTO marketplace_connections .* ON CONFLICT \(user_id, marketplace_id\) DO UPDATE SET\s+connection_status = EXCLUDED.connection_status`).
				WithArgs(tt.args...).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			s := store.NewPostgresStoreWithDB(m)
			require.NoError(t, s.SetStatus(context.Background(), tt.update))
		})
	}
}

func TestPostgresStore_SetStatus_Error(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectExec(`INSERT INTO marketplace_connections`).
		WillReturnError(errors.New("database is read-only"))

	s := store.NewPostgresStoreWithDB(m)
	err := s.SetStatus(context.Background(), store.StatusUpdate{
		UserID: "u", MarketplaceID: 1, Status: domain.StatusPending,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting connection status")
}

func TestPostgresStore_UpdateTokens(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		refreshToken string
		affected     int64
		wantUpdated  bool
	}{
		{name: "updated", refreshToken: "new-refresh", affected: 1, wantUpdated: true},
		{name: "keeps refresh token", refreshToken: "", affected: 1, wantUpdated: true},
		{name: "no longer active", refreshToken: "r", affected: 0, wantUpdated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var refreshArg any = pgxmock.AnyArg()
			if tt.refreshToken != "" {
				refreshArg = strPtr(tt.refreshToken)
			}

			m := newMockPool(t)
			m.ExpectExec(`UPDATE marketplace_connections SET .* AND connection_status = 'active'`).
				WithArgs("user-1", 1, strPtr("new-access"), refreshArg, &expires).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			s := store.NewPostgresStoreWithDB(m)
			updated, err := s.UpdateTokens(context.Background(), store.TokenUpdate{
				UserID:         "user-1",
				MarketplaceID:  1,
				AccessToken:    "new-access",
				RefreshToken:   tt.refreshToken,
				TokenExpiresAt: &expires,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantUpdated, updated)
		})
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectPing()

	s := store.NewPostgresStoreWithDB(m)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MarkRefreshFailed(t *testing.T) {
	t.Parallel()

	readAt := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		affected    int64
		wantApplied bool
	}{
		{name: "disconnects unchanged row", affected: 1, wantApplied: true},
		{name: "row changed since read", affected: 0, wantApplied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMockPool(t)
			m.ExpectExec(`UPDATE marketplace_connections SET .* AND connection_status = 'active'\s+AND updated_at = \$4`).
				WithArgs("user-1", 1, "Token refresh failed: invalid_grant", readAt).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			s := store.NewPostgresStoreWithDB(m)
			applied, err := s.MarkRefreshFailed(context.Background(), store.RefreshFailure{
				UserID:        "user-1",
				MarketplaceID: 1,
				ErrorMessage:  "Token refresh failed: invalid_grant",
				UpdatedAt:     readAt,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
		})
	}
}

func TestPostgresStore_MarkRefreshFailed_Error(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectExec(`UPDATE marketplace_connections SET`).
		WillReturnError(errors.New("deadlock detected"))

	s := store.NewPostgresStoreWithDB(m)
	_, err := s.MarkRefreshFailed(context.Background(), store.RefreshFailure{UserID: "u", MarketplaceID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording refresh failure")
}

func TestRunMigrations_SkipsApplied(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectQuery(`SELECT EXISTS`).
		WithArgs("001_marketplace_connections.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, store.RunMigrations(context.Background(), m))
}

func TestRunMigrations_AppliesPending(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectQuery(`SELECT EXISTS`).
		WithArgs("001_marketplace_connections.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS marketplace_connections`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("001_marketplace_connections.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := store.NewPostgresStoreWithDB(m)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestRunMigrations_ApplyError(t *testing.T) {
	t.Parallel()

	m := newMockPool(t)
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectQuery(`SELECT EXISTS`).
		WithArgs("001_marketplace_connections.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS marketplace_connections`).
		WillReturnError(errors.New("permission denied"))

	err := store.RunMigrations(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying migration 001_marketplace_connections.sql")
}

// encryptedArg matches any sealed token value.
type encryptedArg struct{}

func (encryptedArg) Match(v any) bool {
	s, ok := v.(*string)
	return ok && s != nil && len(*s) > len("enc:v1:") && (*s)[:7] == "enc:v1:"
}

func strPtr(s string) *string { return &s }
