package diag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// observedContext returns a context whose logger records into memory.
func observedContext(t *testing.T) (context.Context, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	return ctx, logs
}

// TestPhase numbers the announcement against the total phase count.
func TestPhase(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	Phase(ctx, PhaseProvision, "Provision environment")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "[2/4] Provision environment", entries[0].Message)
}

// TestReportFatal renders one delimited block with cause and remedies.
func TestReportFatal(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	f := NewFailure("Fetch application",
		errors.New("connection refused"),
		"Check your network connection",
		"Check firewall and proxy settings")

	f.ReportFatal(ctx)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.Contains(t, entries[0].Message, delimiter)
	require.Contains(t, entries[0].Message, "FATAL: Fetch application")
	require.Contains(t, entries[0].Message, "Cause: connection refused")
	require.Contains(t, entries[0].Message, "  - Check firewall and proxy settings")
}

// TestFailureError keeps the cause reachable through errors.Is.
func TestFailureError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("interpreter not found")
	f := NewFailure("Provision environment", sentinel)

	require.EqualError(t, f, "Provision environment: interpreter not found")
	require.ErrorIs(t, f, sentinel)
}

// TestReportSuccess names the data directory in the closing summary.
func TestReportSuccess(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	ReportSuccess(ctx, "/home/user/.config/StrategyAnalyzer")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Message, "/home/user/.config/StrategyAnalyzer")
}
