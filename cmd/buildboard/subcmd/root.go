package subcmd

import (
	"os"

	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/loader"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/render"
)

var Version = "v0.1.0"

var RootCmd = &cobra.Command{
	Use:           "buildboard",
	Short:         "Server build provisioning dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if globals.verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

type globalFlags struct {
	configPath string
	backend    string
	mode       string
	fixtures   string
	verbose    bool
	noColor    bool
}

var globals globalFlags

func init() {
	pfxlog.GlobalInit(logrus.InfoLevel, pfxlog.DefaultOptions().SetTrimPrefix("github.com/suntrap/"))

	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&globals.configPath, "config", "c", "", "path to YAML configuration file")
	flags.StringVar(&globals.backend, "backend", "", "backend base URL (overrides config)")
	flags.StringVar(&globals.mode, "mode", "", "strict or resilient (overrides config)")
	flags.StringVar(&globals.fixtures, "fixtures", "", "fallback fixtures file (overrides config)")
	flags.BoolVarP(&globals.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&globals.noColor, "no-color", false, "disable colored output")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logrus.Fatalf("failure (%v)", err)
	}
}

// loadConfig merges the config file, environment and global flags.
func loadConfig() (*model.Config, error) {
	cfg, err := loader.LoadConfig(globals.configPath)
	if err != nil {
		return nil, err
	}
	if globals.backend != "" {
		cfg.BackendURL = globals.backend
	}
	if globals.mode != "" {
		cfg.Mode = model.Mode(globals.mode)
	}
	if globals.fixtures != "" {
		cfg.FixturesPath = globals.fixtures
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if !globals.verbose && cfg.LogLevel != "" {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		} else {
			logrus.Warnf("ignoring log_level '%s'", cfg.LogLevel)
		}
	}
	return cfg, nil
}

// openContext builds the engine context every backend-facing command uses.
func openContext() (*engine.Context, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := engine.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("backend [%s] mode [%s]", cfg.BackendURL, cfg.Mode)
	return c, nil
}

func newRenderer(cmd *cobra.Command) *render.Renderer {
	if globals.noColor || cmd.OutOrStdout() != os.Stdout {
		return render.New(false)
	}
	return render.New(render.ColorEnabled(os.Stdout))
}
