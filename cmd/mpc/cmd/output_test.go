package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

func TestPrintMarketplacesTable(t *testing.T) {
	t.Parallel()

	synced := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "Token refresh failed: ebay refresh_token exchange failed (status 400): invalid_grant"
	views := []domain.MarketplaceView{
		{
			Marketplace:  domain.MarketplaceInfo{ID: 1, Slug: "ebay", Name: "eBay", Supported: true},
			Status:       domain.StatusDisconnected,
			LastSyncAt:   &synced,
			ErrorMessage: &msg,
		},
		{
			Marketplace: domain.MarketplaceInfo{ID: 3, Slug: "mercari", Name: "Mercari"},
			Status:      domain.StatusNotSupported,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printMarketplacesTable(&buf, views))

	out := buf.String()
	assert.Contains(t, out, "ID  SLUG")
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "not_supported")
	assert.Contains(t, out, "Token refresh failed: ebay refresh_to...")
}

func TestPrintRefreshReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		report    domain.RefreshReport
		want      []string
		notWanted string
	}{
		{
			name:      "no failures",
			report:    domain.RefreshReport{Scanned: 2, Refreshed: 2},
			want:      []string{"Scanned:    2", "Refreshed:  2"},
			notWanted: "REASON",
		},
		{
			name: "with failures",
			report: domain.RefreshReport{
				Scanned: 1,
				Failed:  1,
				Failures: []domain.RefreshFail{
					{UserID: "u-9", MarketplaceID: 2, Reason: "Token refresh failed: revoked"},
				},
			},
			want: []string{"USER", "u-9", "Token refresh failed: revoked"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printRefreshReport(&buf, &tt.report))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			if tt.notWanted != "" {
				assert.NotContains(t, buf.String(), tt.notWanted)
			}
		})
	}
}

func TestParseMarketplaceID(t *testing.T) {
	t.Parallel()

	id, err := parseMarketplaceID("2")
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	for _, bad := range []string{"0", "-1", "ebay", ""} {
		_, err := parseMarketplaceID(bad)
		assert.Error(t, err, bad)
	}
}
