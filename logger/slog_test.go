package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_LogConfiguration_logLevel(t *testing.T) {
	var cases = []struct {
		name  string
		level slog.Level
	}{
		{"", slog.LevelInfo},
		{"error", slog.LevelError},
		{"InfO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"DEBUG", slog.LevelDebug},
		{"TRACE", LevelTrace},
		{"NONE", levelNone},
		{"info-1", slog.LevelInfo - 1},
		{"info+1", slog.LevelInfo + 1},
		{"debug+2", slog.LevelDebug + 2},
	}

	for _, tc := range cases {
		cfg := LogConfiguration{Level: tc.name}
		if lvl := cfg.logLevel(); lvl != tc.level {
			t.Errorf("expected %q to return %d (%s) but got %d (%s)", tc.name, tc.level, tc.level, lvl, lvl)
		}
	}

	// when OutputPath is "discard" logging is disabled
	cfg := LogConfiguration{Level: "info", OutputPath: "discard"}
	require.Equal(t, levelNone, cfg.logLevel())

	cfg = LogConfiguration{Level: "info", OutputPath: os.DevNull}
	require.Equal(t, levelNone, cfg.logLevel())
}

func Test_New(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		require.NotNil(t, l)
	})

	t.Run("unknown format", func(t *testing.T) {
		l, err := New(&LogConfiguration{Format: "xml"})
		require.EqualError(t, err, `creating handler for logger: unknown log format "xml"`)
		require.Nil(t, l)
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cfg := &LogConfiguration{Format: "json", TimeFormat: "none"}
		require.NoError(t, cfg.SetWriter(buf))
		l, err := New(cfg)
		require.NoError(t, err)

		l.Debug("not logged")
		l.Info("hello", Command("mint"), Data(42))
		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, map[string]any{"level": "INFO", "msg": "hello", "command": "mint", "data": float64(42)}, rec)
	})

	t.Run("ecs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cfg := &LogConfiguration{Format: "ecs", TimeFormat: "none"}
		require.NoError(t, cfg.SetWriter(buf))
		l, err := New(cfg)
		require.NoError(t, err)

		l.Warn("rejected", Data("str"))
		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "rejected", rec["message"])
		require.Equal(t, map[string]any{"String": "str"}, rec["data"])
	})

	t.Run("console", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cfg := &LogConfiguration{Level: "debug", TimeFormat: "none", NoColor: true}
		require.NoError(t, cfg.SetWriter(buf))
		l, err := New(cfg)
		require.NoError(t, err)

		l.Debug("executing", Command("burn"))
		out := buf.String()
		require.Contains(t, out, "DBG")
		require.Contains(t, out, "executing")
		require.Contains(t, out, "command=burn")
	})

	t.Run("log file", func(t *testing.T) {
		fn := filepath.Join(t.TempDir(), "logs", "engine.log")
		l, err := New(&LogConfiguration{Format: "text", OutputPath: fn})
		require.NoError(t, err)
		l.Info("to the file")
		b, err := os.ReadFile(fn)
		require.NoError(t, err)
		require.Contains(t, string(b), "msg=\"to the file\"")
	})

	require.EqualError(t, (&LogConfiguration{}).SetWriter(nil), "writer is nil")
}

func Test_formatTimeAttr(t *testing.T) {
	t.Run("empty format string", func(t *testing.T) {
		require.Nil(t, formatTimeAttr(""))
	})

	t.Run("format: none", func(t *testing.T) {
		f := formatTimeAttr("none")
		require.NotNil(t, f)
		now := time.Now()

		a := f(nil, slog.Time(slog.TimeKey, now))
		require.Equal(t, slog.Attr{}, a)

		a = f(nil, slog.Time("foo", now))
		require.True(t, a.Equal(slog.Time("foo", now)))
	})

	t.Run("format: format string", func(t *testing.T) {
		f := formatTimeAttr("15:04:05.0000")
		require.NotNil(t, f)

		// zero time is not changed
		a := f(nil, slog.Time(slog.TimeKey, time.Time{}))
		require.Equal(t, slog.Time(slog.TimeKey, time.Time{}), a)

		now := time.Now()
		a = f(nil, slog.Time(slog.TimeKey, now))
		require.Equal(t, now.Format("15:04:05.0000"), a.Value.String())

		// value is of wrong type for time key
		require.Panics(t, func() { f(nil, slog.Int(slog.TimeKey, 42)) })
	})
}

func Test_composeAttrFmt(t *testing.T) {
	b0 := func(groups []string, a slog.Attr) slog.Attr { return slog.Int64(a.Key, a.Value.Int64()+1) }
	b1 := func(groups []string, a slog.Attr) slog.Attr { return slog.Int64(a.Key, a.Value.Int64()+2) }
	b2 := func(groups []string, a slog.Attr) slog.Attr { return slog.Int64(a.Key, a.Value.Int64()+4) }
	b3 := func(groups []string, a slog.Attr) slog.Attr { return slog.Int64(a.Key, a.Value.Int64()+8) }

	require.Nil(t, composeAttrFmt())
	require.Nil(t, composeAttrFmt(nil, nil, nil))

	f := composeAttrFmt(b0)
	require.EqualValues(t, 1, f(nil, slog.Int64("test", 0)).Value.Int64())

	f = composeAttrFmt(b0, nil, b1)
	require.EqualValues(t, 3, f(nil, slog.Int64("test", 0)).Value.Int64())

	f = composeAttrFmt(b0, b1, b2, b3)
	require.EqualValues(t, 15, f(nil, slog.Int64("test", 0)).Value.Int64())

	// same func passed twice is called twice
	f = composeAttrFmt(b3, b3)
	require.EqualValues(t, 16, f(nil, slog.Int64("test", 0)).Value.Int64())
}
