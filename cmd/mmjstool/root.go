package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattermost/mmjstool/pkg/extractor"
	"github.com/mattermost/mmjstool/pkg/i18n"
	"github.com/mattermost/mmjstool/pkg/parser"
	"github.com/mattermost/mmjstool/pkg/scanner"
	"github.com/mattermost/mmjstool/pkg/util"
)

// Configuration keys. Flags bind to the keys of the same name; the exclude
// lists only come from the config file or the environment.
const (
	keyConfig        = "config"
	keyWebappDir     = "webapp-dir"
	keyMobileDir     = "mobile-dir"
	keyLogLevel      = "log-level"
	keyLogFormat     = "log-format"
	keyRules         = "rules"
	keyConflicts     = "conflicts"
	keyStrictSyntax  = "strict-syntax"
	keyProgress      = "progress"
	keyWorkers       = "workers"
	keyWebappExclude = "webapp.exclude"
	keyMobileExclude = "mobile.exclude"
)

// app holds the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	logger  *slog.Logger
	parsers *parser.ParserManager
	ext     *extractor.Extractor
	targets i18n.Targets
	policy  scanner.ConflictPolicy
	workers int
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{v: viper.New(), stdout: stdout, stderr: stderr}
}

func (a *app) close() {
	if a.parsers != nil {
		a.parsers.Close()
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mmjstool",
		Short: "Mattermost JavaScript tooling",
		Long: `mmjstool maintains the translation dictionaries of the Mattermost webapp and
mobile codebases. It extracts translation keys and default messages from the
JavaScript/TypeScript sources and reconciles them with the i18n JSON files.`,
		Example:           "  mmjstool i18n extract-webapp --webapp-dir ./",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup() },
	}

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default is ./.mmjstool.yaml, then $HOME/.mmjstool.yaml)")
	flags.String(keyWebappDir, "../mattermost-webapp", "webapp source code directory")
	flags.String(keyMobileDir, "../mattermost-mobile", "mobile source code directory")
	flags.String(keyLogLevel, "info", "log level: debug, info, warn, error")
	flags.String(keyLogFormat, "text", "log format: text or json")
	flags.String(keyRules, "", "YAML file with the translatable JSX components")
	flags.String(keyConflicts, string(scanner.ConflictLastWins), "same key with different messages: last-wins or error")
	flags.Bool(keyStrictSyntax, true, "fail files with syntax errors instead of extracting what parses")
	flags.Bool(keyProgress, false, "show extraction progress on stderr")
	flags.Int(keyWorkers, 0, "extraction workers (0 = based on CPU count)")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(a.i18nCmd(), a.versionCmd())
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "mmjstool %s\n", version)
			return nil
		},
	}
}

// setup reads the configuration and builds the shared services.
func (a *app) setup() error {
	if err := a.readConfig(); err != nil {
		return err
	}

	logCfg := util.DefaultLoggerConfig()
	logCfg.Output = a.stderr
	var err error
	if logCfg.Level, err = util.ParseLevel(a.v.GetString(keyLogLevel)); err != nil {
		return err
	}
	if logCfg.Format, err = util.ParseFormat(a.v.GetString(keyLogFormat)); err != nil {
		return err
	}
	a.logger = util.NewLogger(logCfg)
	util.SetDefault(a.logger)

	a.policy, err = scanner.ParseConflictPolicy(a.v.GetString(keyConflicts))
	if err != nil {
		return err
	}
	a.workers = a.v.GetInt(keyWorkers)

	rules := extractor.DefaultRuleSet()
	if path := a.v.GetString(keyRules); path != "" {
		if rules, err = extractor.LoadRuleSet(path); err != nil {
			return err
		}
		a.logger.Debug("loaded component rules", "file", path, "components", rules.Len())
	}

	a.parsers = parser.NewParserManager(a.logger)
	a.ext = extractor.NewExtractor(a.parsers, extractor.Options{
		Rules:                rules,
		TolerateSyntaxErrors: !a.v.GetBool(keyStrictSyntax),
		Logger:               a.logger,
	})

	a.targets = i18n.NewTargets(
		a.v.GetString(keyWebappDir),
		a.v.GetString(keyMobileDir),
		a.v.GetStringSlice(keyWebappExclude),
		a.v.GetStringSlice(keyMobileExclude),
	)
	return nil
}

// readConfig loads the optional config file and environment. Precedence is
// flag, then MMJSTOOL_* environment, then config file, then default.
func (a *app) readConfig() error {
	a.v.SetEnvPrefix("MMJSTOOL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	_ = a.v.BindEnv(keyWebappExclude)
	_ = a.v.BindEnv(keyMobileExclude)

	if path := a.v.GetString(keyConfig); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName(".mmjstool")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (a *app) scanConfig() scanner.ScanConfig {
	cfg := scanner.DefaultScanConfig()
	cfg.ConflictPolicy = a.policy
	cfg.Workers = a.workers
	return cfg
}

// tool builds an i18n.Tool writing reports to stdout.
func (a *app) tool(refresh bool) *i18n.Tool {
	return a.newTool(a.stdout, refresh)
}

func (a *app) newTool(out io.Writer, refresh bool) *i18n.Tool {
	var progress scanner.ProgressCallback
	if a.v.GetBool(keyProgress) {
		progress = newProgressReporter(a.stderr).report
	}

	return i18n.New(i18n.Options{
		Extractor: a.ext,
		Scan:      a.scanConfig(),
		Progress:  progress,
		Refresh:   refresh,
		Out:       out,
		Logger:    a.logger,
	})
}
