package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printMarketplacesTable(w io.Writer, views []domain.MarketplaceView) error {
	tw := newTabWriter(w)
	tw.writef("ID\tSLUG\tNAME\tSTATUS\tLAST SYNC\tERROR\n")
	for i := range views {
		v := &views[i]
		tw.writef("%d\t%s\t%s\t%s\t%s\t%s\n",
			v.Marketplace.ID,
			v.Marketplace.Slug,
			v.Marketplace.Name,
			v.Status,
			formatTime(v.LastSyncAt),
			truncate(deref(v.ErrorMessage), 40),
		)
	}
	return tw.finish()
}

func printMarketplaceStatus(w io.Writer, st *domain.MarketplaceStatus) error {
	tw := newTabWriter(w)
	tw.writef("Marketplace:\t%s (%s)\n", st.Marketplace.Name, st.Marketplace.Slug)
	tw.writef("Status:\t%s\n", st.Status)
	tw.writef("Token:\t%s\n", st.TokenStatus)
	tw.writef("Expires:\t%s\n", formatTime(st.ExpiresAt))
	tw.writef("Last Sync:\t%s\n", formatTime(st.LastSyncAt))
	if st.ErrorMessage != nil {
		tw.writef("Error:\t%s\n", *st.ErrorMessage)
	}
	return tw.finish()
}

func printRefreshReport(w io.Writer, r *domain.RefreshReport) error {
	tw := newTabWriter(w)
	tw.writef("Scanned:\t%d\n", r.Scanned)
	tw.writef("Refreshed:\t%d\n", r.Refreshed)
	tw.writef("Failed:\t%d\n", r.Failed)
	tw.writef("Skipped:\t%d\n", r.Skipped)
	if err := tw.finish(); err != nil {
		return err
	}
	if len(r.Failures) == 0 {
		return nil
	}

	tw = newTabWriter(w)
	tw.writef("\nUSER\tMARKETPLACE\tREASON\n")
	for _, f := range r.Failures {
		tw.writef("%s\t%d\t%s\n", f.UserID, f.MarketplaceID, truncate(f.Reason, 60))
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
