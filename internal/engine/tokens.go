package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	"github.com/donaldgifford/marketplace-connections/internal/notify"
	"github.com/donaldgifford/marketplace-connections/internal/store"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

const (
	triggerOnDemand  = "on_demand"
	triggerScheduled = "scheduled"
)

var errNoRefreshToken = errors.New("no refresh token stored")

type refreshOutcome struct {
	accessToken  string
	disconnected bool
	// inactive is set when the connection stopped being active before the
	// refresh could run.
	inactive bool
	reason   string
}

// GetValidAccessToken returns an access token for the user's active
// connection, refreshing it first when it expires within the lookahead.
// A failed refresh disconnects the connection and is returned; the stale
// token is never handed out.
func (eng *Engine) GetValidAccessToken(ctx context.Context, userID, slug string) (string, error) {
	def, err := eng.registry.Lookup(slug)
	if err != nil {
		return "", err
	}

	conn, err := eng.store.GetConnection(ctx, userID, def.ID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotConnected
	}
	if err != nil {
		return "", fmt.Errorf("loading connection: %w", err)
	}
	if conn.Status != domain.StatusActive || conn.AccessToken == "" {
		return "", ErrNotConnected
	}

	if !eng.needsRefresh(conn) {
		return conn.AccessToken, nil
	}

	out, err := eng.refreshShared(ctx, def, conn.UserID, triggerOnDemand)
	if err != nil {
		return "", err
	}
	return out.accessToken, nil
}

func (eng *Engine) needsRefresh(conn *domain.Connection) bool {
	if conn.TokenExpiresAt == nil {
		return false
	}
	return !conn.TokenExpiresAt.After(eng.now().Add(eng.lookahead))
}

// refreshShared collapses concurrent refreshes of one connection into a
// single provider call. The row is re-read inside the shared call; a
// token refreshed since the caller's read is returned as is. The shared
// call is detached from any one caller's cancellation and bounded by the
// exchange timeout.
func (eng *Engine) refreshShared(
	ctx context.Context,
	def marketplace.Definition,
	userID string,
	trigger string,
) (refreshOutcome, error) {
	key := userID + "/" + strconv.Itoa(def.ID)
	v, err, shared := eng.refreshes.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		conn, err := eng.currentConnection(ctx, userID, def)
		if err != nil {
			return refreshOutcome{inactive: errors.Is(err, ErrNotConnected), reason: err.Error()}, err
		}
		if !eng.needsRefresh(conn) {
			eng.log.Debug("token already refreshed", "user_id", userID, "marketplace", def.Slug)
			return refreshOutcome{accessToken: conn.AccessToken}, nil
		}
		return eng.refresh(ctx, def, conn, trigger)
	})
	if shared {
		eng.log.Debug("joined in-flight token refresh", "user_id", userID, "marketplace", def.Slug)
	}
	out, _ := v.(refreshOutcome)
	return out, err
}

// currentConnection loads the active connection or returns ErrNotConnected.
func (eng *Engine) currentConnection(
	ctx context.Context,
	userID string,
	def marketplace.Definition,
) (*domain.Connection, error) {
	conn, err := eng.store.GetConnection(ctx, userID, def.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("loading connection: %w", err)
	}
	if conn.Status != domain.StatusActive || conn.AccessToken == "" {
		return nil, ErrNotConnected
	}
	return conn, nil
}

func (eng *Engine) refresh(
	ctx context.Context,
	def marketplace.Definition,
	conn *domain.Connection,
	trigger string,
) (refreshOutcome, error) {
	var (
		ts  *domain.TokenSet
		err error
	)
	if conn.RefreshToken == "" {
		err = errNoRefreshToken
	} else {
		ts, err = eng.exchanger.ExchangeRefreshToken(ctx, def, conn.RefreshToken)
	}

	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(trigger, "failed").Inc()
		eng.log.Warn("token refresh failed",
			"user_id", conn.UserID,
			"marketplace", def.Slug,
			"trigger", trigger,
			"error", err,
		)
		return eng.refreshFailed(ctx, def, conn, err)
	}

	expiresAt := eng.now().Add(ts.ExpiresIn)
	updated, err := eng.store.UpdateTokens(ctx, store.TokenUpdate{
		UserID:         conn.UserID,
		MarketplaceID:  def.ID,
		AccessToken:    ts.AccessToken,
		RefreshToken:   ts.RefreshToken,
		TokenExpiresAt: &expiresAt,
	})
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(trigger, "failed").Inc()
		return refreshOutcome{reason: err.Error()}, fmt.Errorf("saving refreshed token: %w", err)
	}
	if !updated {
		// Disconnected while the exchange was in flight.
		metrics.TokenRefreshesTotal.WithLabelValues(trigger, "discarded").Inc()
		return refreshOutcome{inactive: true, reason: ErrNotConnected.Error()}, ErrNotConnected
	}

	metrics.TokenRefreshesTotal.WithLabelValues(trigger, "success").Inc()
	eng.log.Info("token refreshed",
		"user_id", conn.UserID,
		"marketplace", def.Slug,
		"trigger", trigger,
		"expires_at", expiresAt,
	)
	return refreshOutcome{accessToken: ts.AccessToken}, nil
}

// refreshFailed disconnects conn with the refresh error. When the row was
// rewritten after conn was read, the write is skipped and the current
// token is returned if it is still fresh.
func (eng *Engine) refreshFailed(
	ctx context.Context,
	def marketplace.Definition,
	conn *domain.Connection,
	cause error,
) (refreshOutcome, error) {
	msg := "Token refresh failed: " + cause.Error()
	out := refreshOutcome{reason: msg}
	refreshErr := fmt.Errorf("refreshing %s token: %w", def.Slug, cause)

	applied, err := eng.store.MarkRefreshFailed(ctx, store.RefreshFailure{
		UserID:        conn.UserID,
		MarketplaceID: def.ID,
		ErrorMessage:  msg,
		UpdatedAt:     conn.UpdatedAt,
	})
	if err != nil {
		eng.log.Error("recording disconnect",
			"user_id", conn.UserID,
			"marketplace", def.Slug,
			"error", err,
		)
		return out, refreshErr
	}
	if applied {
		metrics.ConnectionTransitionsTotal.WithLabelValues(def.Slug, string(domain.StatusDisconnected)).Inc()
		eng.invalidate(ctx, conn.UserID)
		out.disconnected = true
		return out, refreshErr
	}

	current, err := eng.currentConnection(ctx, conn.UserID, def)
	if err != nil {
		return refreshOutcome{inactive: errors.Is(err, ErrNotConnected), reason: err.Error()}, err
	}
	if !eng.needsRefresh(current) {
		eng.log.Info("token refresh superseded",
			"user_id", conn.UserID,
			"marketplace", def.Slug,
		)
		return refreshOutcome{accessToken: current.AccessToken}, nil
	}
	return out, refreshErr
}

// RefreshExpiringTokens refreshes every active connection expiring within
// the lookahead. Rows are processed independently; failures are reported
// and never returned. Only a failure to list rows is an error.
func (eng *Engine) RefreshExpiringTokens(ctx context.Context) (domain.RefreshReport, error) {
	start := time.Now()
	defer func() {
		metrics.RefreshBatchDuration.Observe(time.Since(start).Seconds())
	}()

	conns, err := eng.store.ListExpiringConnections(ctx, eng.now().Add(eng.lookahead))
	if err != nil {
		return domain.RefreshReport{}, fmt.Errorf("listing expiring connections: %w", err)
	}

	report := domain.RefreshReport{Scanned: len(conns)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(eng.concurrency)

	for i := range conns {
		conn := &conns[i]
		def, ok := eng.registry.GetByID(conn.MarketplaceID)
		if !ok || !def.Supported {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			out, err := eng.refreshShared(ctx, def, conn.UserID, triggerScheduled)

			mu.Lock()
			switch {
			case out.inactive:
				report.Skipped++
			case err != nil:
				report.Failed++
				report.Failures = append(report.Failures, domain.RefreshFail{
					UserID:        conn.UserID,
					MarketplaceID: conn.MarketplaceID,
					Reason:        out.reason,
				})
			default:
				report.Refreshed++
			}
			mu.Unlock()

			if out.disconnected {
				eng.notifyDisconnect(ctx, conn.UserID, def, out.reason)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	metrics.RefreshBatchLastSuccess.SetToCurrentTime()
	eng.log.Info("token refresh batch complete",
		"scanned", report.Scanned,
		"refreshed", report.Refreshed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", time.Since(start).String(),
	)
	return report, nil
}

func (eng *Engine) notifyDisconnect(ctx context.Context, userID string, def marketplace.Definition, reason string) {
	err := eng.notifier.SendDisconnect(context.WithoutCancel(ctx), &notify.DisconnectPayload{
		UserID:          userID,
		MarketplaceID:   def.ID,
		MarketplaceName: def.Name,
		Reason:          reason,
		OccurredAt:      eng.now(),
	})
	if err != nil {
		eng.log.Error("sending disconnect notification",
			"user_id", userID,
			"marketplace", def.Slug,
			"error", err,
		)
	}
}
