package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		require.False(t, l.Enabled(context.Background(), level))
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("pass finalized", "subpasses", 2)
	require.Contains(t, buf.String(), "pass finalized")
	require.Contains(t, buf.String(), "subpasses=2")

	SetLogger(nil)
	require.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestReplaceLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	a := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	b := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	installedA, prevA := ReplaceLogger(a)
	require.Same(t, a, installedA)
	require.Same(t, orig, prevA)
	installedB, prevB := ReplaceLogger(b)
	require.Same(t, a, prevB)

	// a no longer owns the slot
	require.False(t, RestoreLogger(installedA, prevA))
	require.Same(t, b, Logger())

	require.True(t, RestoreLogger(installedB, prevB))
	require.True(t, RestoreLogger(installedA, prevA))
	require.Same(t, orig, Logger())

	silent, _ := ReplaceLogger(nil)
	require.NotNil(t, silent)
	require.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
