package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/sss-org/sss-engine/logger"
)

/*
New returns logger for test t on debug level.
*/
func New(t testing.TB) *slog.Logger {
	return NewLvl(t, slog.LevelDebug)
}

/*
NewLvl returns logger for test t on level "level".
Output goes through t.Log so it is only shown when the test fails or
is run in verbose mode.

Set environment variable SSS_TEST_LOG_NO_COLORS to "true" to disable colors.
*/
func NewLvl(t testing.TB, level slog.Level) *slog.Logger {
	cfg := &logger.LogConfiguration{
		Level:      level.String(),
		Format:     "console",
		TimeFormat: "none",
		NoColor:    noColors(),
	}
	if err := cfg.SetWriter(testLogWriter{t: t}); err != nil {
		t.Fatalf("setting log writer: %v", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	return log
}

/*
LoggerBuilder returns "logger factory" for test t.
*/
func LoggerBuilder(t testing.TB) func(*logger.LogConfiguration) (*slog.Logger, error) {
	return func(lc *logger.LogConfiguration) (*slog.Logger, error) {
		return New(t), nil
	}
}

/*
NOP returns logger which doesn't log anything.
*/
func NOP() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

func noColors() bool {
	v, ok := os.LookupEnv("SSS_TEST_LOG_NO_COLORS")
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

type testLogWriter struct {
	t testing.TB
}

func (w testLogWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	// trim the trailing newline as t.Log adds one
	if l := len(p); l > 0 && p[l-1] == '\n' {
		w.t.Log(string(p[:l-1]))
	} else {
		w.t.Log(string(p))
	}
	return len(p), nil
}
