package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sss-org/sss-engine/logger"
	"github.com/sss-org/sss-engine/observability"
)

type (
	LoggerFactory func(cfg *logger.LogConfiguration) (*slog.Logger, error)

	baseConfiguration struct {
		// The engine home directory
		HomeDir string
		// Configuration file URL. If it's relative, then it's relative from the HomeDir.
		CfgFile string
		// Logger configuration file URL.
		LogCfgFile string

		loggerBuilder LoggerFactory
		observe       *observability.Observability
	}
)

const (
	// The prefix for configuration keys inside environment.
	envPrefix = "SSS"
	// The default name for config file.
	defaultConfigFile = "config.yaml"
	// the default engine home directory.
	defaultHomeDir = ".sss"
	// The default logger configuration file name.
	defaultLoggerConfigFile = "logger-config.yaml"
	// The default state database file name.
	defaultStateDBFile = "state.db"
	// The configuration key for home directory.
	keyHome = "home"
	// The configuration key for config file name.
	keyConfig = "config"
	// Enables or disables metrics collection
	keyMetrics = "metrics"

	flagNameLoggerCfgFile = "logger-config"
	flagNameLogOutputFile = "log-file"
	flagNameLogLevel      = "log-level"
	flagNameLogFormat     = "log-format"
)

func (r *baseConfiguration) addConfigurationFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&r.HomeDir, keyHome, "", fmt.Sprintf("set the SSS_HOME for this invocation (default is %s)", sssHomeDir()))
	cmd.PersistentFlags().StringVar(&r.CfgFile, keyConfig, "", fmt.Sprintf("config file URL (default is $SSS_HOME/%s)", defaultConfigFile))

	cmd.PersistentFlags().String(keyMetrics, "", "metrics exporter, disabled when not set. One of: stdout, prometheus")

	cmd.PersistentFlags().StringVar(&r.LogCfgFile, flagNameLoggerCfgFile, defaultLoggerConfigFile, "logger config file URL. Considered absolute if starts with '/'. Otherwise relative from $SSS_HOME.")
	// do not set default values for these flags as then we can easily determine whether to load the value from cfg file or not
	cmd.PersistentFlags().String(flagNameLogOutputFile, "", "log file path or one of the special values: stdout, stderr, discard")
	cmd.PersistentFlags().String(flagNameLogLevel, "", "logging level, one of: DEBUG, INFO, WARN, ERROR")
	cmd.PersistentFlags().String(flagNameLogFormat, "", "log format, one of: text, json, console, ecs")
}

/*
initConfigFileLocation resolves the home directory and the config file
before the rest of the configuration is read from the file: flag value
first, then environment, then the default.
*/
func (r *baseConfiguration) initConfigFileLocation() {
	r.HomeDir = firstNonEmpty(r.HomeDir, os.Getenv(envKey(keyHome)), sssHomeDir())
	r.CfgFile = r.homePath(firstNonEmpty(r.CfgFile, os.Getenv(envKey(keyConfig)), defaultConfigFile))
}

// LoggerCfgFilename returns the logger config file, the default location when the flag is not set.
func (r *baseConfiguration) LoggerCfgFilename() string {
	return r.homePath(firstNonEmpty(r.LogCfgFile, defaultLoggerConfigFile))
}

func (r *baseConfiguration) configFileExists() bool {
	_, err := os.Stat(r.CfgFile)
	return err == nil
}

// stateDBFile returns path of the state database, "file" is the value of the db flag.
func (r *baseConfiguration) stateDBFile(file string) string {
	return r.homePath(firstNonEmpty(file, defaultStateDBFile))
}

// homePath returns relative path joined to the home directory.
func (r *baseConfiguration) homePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.HomeDir, file)
}

/*
initLogger creates logger from the logger config file, the log flags which
were set (on command line, in environment or config file) override the values
of the logger config file. Missing logger config file is not an error when
it is in the default location.
*/
func (r *baseConfiguration) initLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := r.loadLoggerConfig()
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag  string
		value *string
	}{
		{flagNameLogLevel, &cfg.Level},
		{flagNameLogFormat, &cfg.Format},
		{flagNameLogOutputFile, &cfg.OutputPath},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if *o.value, err = cmd.Flags().GetString(o.flag); err != nil {
			return nil, fmt.Errorf("failed to read %s flag value: %w", o.flag, err)
		}
	}

	log, err := r.loggerBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

func (r *baseConfiguration) loadLoggerConfig() (*logger.LogConfiguration, error) {
	cfg := &logger.LogConfiguration{}
	file := filepath.Clean(r.LoggerCfgFilename())
	f, err := os.Open(file)
	switch {
	case errors.Is(err, os.ErrNotExist) && file == filepath.Join(r.HomeDir, defaultLoggerConfigFile):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("opening logger configuration file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding logger configuration (%s): %w", file, err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envKey(key string) string {
	return strings.ToUpper(envPrefix + "_" + strings.ReplaceAll(key, "-", "_"))
}

func sssHomeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		panic("default user home dir not defined: " + err.Error())
	}
	return filepath.Join(dir, defaultHomeDir)
}
