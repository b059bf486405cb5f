package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sss-org/sss-engine/observability"
)

type (
	sssApp struct {
		baseCmd    *cobra.Command
		baseConfig *baseConfiguration
	}
)

// New creates a new stablecoin engine application
func New(logF LoggerFactory) *sssApp {
	baseCmd, baseConfig := newBaseCmd(logF)
	return &sssApp{baseCmd, baseConfig}
}

// Execute adds all child commands and runs the application
func (a *sssApp) Execute(ctx context.Context) (err error) {
	defer func() {
		if a.baseConfig.observe != nil {
			err = errors.Join(err, a.baseConfig.observe.Shutdown())
		}
	}()

	return a.addAndExecuteCommand(ctx)
}

func (a *sssApp) addAndExecuteCommand(ctx context.Context) error {
	if err := a.addCommands(); err != nil {
		return err
	}
	return a.baseCmd.ExecuteContext(ctx)
}

func (a *sssApp) addCommands() error {
	if a.baseCmd.HasSubCommands() {
		return errors.New("commands have been already added")
	}
	a.baseCmd.AddCommand(
		newServeCmd(a.baseConfig),
		newExecCmd(a.baseConfig),
		newQueryCmd(a.baseConfig),
		newEventsCmd(a.baseConfig),
		newCommandsCmd(a.baseConfig),
	)
	return nil
}

func newBaseCmd(logF LoggerFactory) (*cobra.Command, *baseConfiguration) {
	config := &baseConfiguration{loggerBuilder: logF}
	// baseCmd represents the base command when called without any subcommands
	var baseCmd = &cobra.Command{
		Use:           "sss",
		Short:         "The stablecoin compliance and governance engine",
		Long:          `The sss CLI runs the engine's REST API server and executes commands and queries against the local state database.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If subcommand does not define PersistentPreRunE, the one from base cmd is used.
			if err := initializeConfig(cmd, config); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}
	config.addConfigurationFlags(baseCmd)

	return baseCmd, config
}

func initializeConfig(cmd *cobra.Command, config *baseConfiguration) error {
	if err := config.initializeConfig(cmd); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	log, err := config.initLogger(cmd)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	metrics, err := cmd.Flags().GetString(keyMetrics)
	if err != nil {
		return fmt.Errorf("reading flag %q: %w", keyMetrics, err)
	}
	if config.observe, err = observability.New(metrics, log); err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	return nil
}

/*
initializeConfig applies configuration to the flags of "cmd" which were not
set on the command line. Value of a flag is taken from the first source
which has it:
  - environment variable SSS_<FLAG>, dashes replaced by underscores, ie
    --epoch-duration is SSS_EPOCH_DURATION;
  - config file key scoped by the command, most specific first, ie for
    "sss query mint --db" keys "query.mint.db" and "query.db";
  - top level key of the config file, ie "db".
*/
func (config *baseConfiguration) initializeConfig(cmd *cobra.Command) error {
	config.initConfigFileLocation()

	v := viper.New()
	if config.configFileExists() {
		v.SetConfigFile(config.CfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", config.CfgFile, err)
		}
	}

	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// "home" and "config" are needed to find the config file, handled separately
		if f.Changed || f.Name == keyHome || f.Name == keyConfig {
			return
		}
		value, ok := os.LookupEnv(envKey(f.Name))
		if !ok {
			for _, key := range configKeys(cmd, f.Name) {
				if v.IsSet(key) {
					value, ok = fmt.Sprint(v.Get(key)), true
					break
				}
			}
		}
		if ok {
			if err := cmd.Flags().Set(f.Name, value); err != nil {
				errs = append(errs, fmt.Errorf("setting flag %q value: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// configKeys returns config file keys of the flag, from the most specific command scope to the top level key.
func configKeys(cmd *cobra.Command, flag string) []string {
	var scope []string
	for c := cmd; c.HasParent(); c = c.Parent() {
		scope = append([]string{c.Name()}, scope...)
	}
	keys := make([]string, 0, len(scope)+1)
	for i := len(scope); i > 0; i-- {
		keys = append(keys, strings.Join(append(scope[:i:i], flag), "."))
	}
	return append(keys, flag)
}
