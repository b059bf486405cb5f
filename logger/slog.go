package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
	// levelNone is used to disable logging
	levelNone slog.Level = math.MaxInt

	zerologMessageKey = "message"
	zerologErrorKey   = "error"
)

/*
LogConfiguration is the logger configuration, loaded from YAML file and/or
overridden by command line flags.
*/
type LogConfiguration struct {
	// one of the predefined level names (case insensitive) optionally
	// followed by +/- offset, ie "info", "debug+2". Default "info".
	Level string `yaml:"defaultLevel"`
	// log file path or one of the special values: stdout, stderr, discard.
	// Default stderr.
	OutputPath string `yaml:"outputPath"`
	// one of "text", "json", "console", "ecs". Default "console".
	Format string `yaml:"format"`
	// Go time format string or "none" to not log time at all.
	TimeFormat string `yaml:"timeFormat"`
	// when true source code location of the logging call is added.
	ShowSource bool `yaml:"showSource"`
	// console format only: disable coloring of the output.
	NoColor bool `yaml:"noColor"`

	// writer overrides OutputPath when assigned, used by tests.
	writer io.Writer
}

// New creates new slog.Logger based on cfg, nil cfg means defaults.
func New(cfg *LogConfiguration) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &LogConfiguration{}
	}
	h, err := cfg.Handler()
	if err != nil {
		return nil, fmt.Errorf("creating handler for logger: %w", err)
	}
	return slog.New(h), nil
}

// Handler builds slog handler according to the configuration.
func (cfg *LogConfiguration) Handler() (slog.Handler, error) {
	out, err := cfg.output()
	if err != nil {
		return nil, fmt.Errorf("creating log output: %w", err)
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.ShowSource,
		Level:     cfg.logLevel(),
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat))
		return slog.NewJSONHandler(out, opts), nil
	case "text":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatDataAttrAsJSON)
		return slog.NewTextHandler(out, opts), nil
	case "ecs":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatAttrECS)
		return slog.NewJSONHandler(out, opts), nil
	case "console", "":
		// JSON records are rendered by zerolog's ConsoleWriter into human friendly form
		cw := zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: "15:04:05.000"}
		if cfg.TimeFormat == "none" {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		opts.ReplaceAttr = composeAttrFmt(formatAttrConsole, formatDataAttrAsJSON)
		return slog.NewJSONHandler(cw, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func (cfg *LogConfiguration) output() (io.Writer, error) {
	if cfg.writer != nil {
		return cfg.writer, nil
	}
	switch strings.ToLower(cfg.OutputPath) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard", os.DevNull:
		return io.Discard, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0700); err != nil {
		return nil, fmt.Errorf("creating directory for log file: %w", err)
	}
	f, err := os.OpenFile(filepath.Clean(cfg.OutputPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func (cfg *LogConfiguration) logLevel() slog.Level {
	switch strings.ToLower(cfg.OutputPath) {
	case "discard", os.DevNull:
		return levelNone
	}

	name, offset := cfg.Level, 0
	if i := strings.IndexAny(name, "+-"); i > 0 {
		if v, err := strconv.Atoi(name[i:]); err == nil {
			name, offset = name[:i], v
		}
	}

	var lvl slog.Level
	switch strings.ToUpper(name) {
	case "NONE":
		return levelNone
	case "TRACE":
		lvl = LevelTrace
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN", "WARNING":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return lvl + slog.Level(offset)
}

// SetWriter makes the logger to write into w instead of OutputPath.
func (cfg *LogConfiguration) SetWriter(w io.Writer) error {
	if w == nil {
		return errors.New("writer is nil")
	}
	cfg.writer = w
	return nil
}
