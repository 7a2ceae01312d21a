package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattermost/mmjstool/pkg/dictionary"
	"github.com/mattermost/mmjstool/pkg/i18n"
	mcpserver "github.com/mattermost/mmjstool/pkg/mcp"
	"github.com/mattermost/mmjstool/pkg/scanner"
	"github.com/mattermost/mmjstool/pkg/watch"
)

// targetSet picks the targets a command operates on.
type targetSet func(i18n.Targets) []i18n.Target

func webappOnly(ts i18n.Targets) []i18n.Target { return []i18n.Target{ts.Webapp} }
func mobileOnly(ts i18n.Targets) []i18n.Target { return []i18n.Target{ts.Mobile} }
func allTargets(ts i18n.Targets) []i18n.Target { return ts.All() }

// variant is one member of a webapp/mobile/both command family.
type variant struct {
	suffix string
	what   string
	pick   targetSet
}

var variants = []variant{
	{"", "webapp and mobile", allTargets},
	{"-webapp", "webapp", webappOnly},
	{"-mobile", "mobile", mobileOnly},
}

func (a *app) i18nCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "i18n",
		Short: "I18n management commands",
	}

	cmd.AddCommand(
		a.extractCmd("extract-webapp", webappOnly,
			"Read the webapp source code, find all the translation strings and write them to i18n/en.json"),
		a.extractCmd("extract-mobile", mobileOnly,
			"Read the mobile source code, find all the translation strings and write them to assets/base/i18n/en.json"),
		a.combineCmd(),
		a.splitCmd(),
		a.sortCmd(),
		a.extractFileCmd(),
		a.watchCmd(),
		a.serveCmd(),
	)
	for _, v := range variants {
		cmd.AddCommand(
			a.checkCmd(v),
			a.checkEmptySrcCmd(v),
			a.cleanCmd(v),
			a.cleanAllCmd(v),
			a.cleanEmptyCmd(v),
		)
	}
	return cmd
}

func (a *app) extractCmd(use string, pick targetSet, short string) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := a.tool(refresh)
			for _, target := range pick(a.targets) {
				if _, err := tool.Update(cmd.Context(), target); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "also replace existing messages with the defaults found in the sources")
	return cmd
}

func (a *app) checkCmd(v variant) *cobra.Command {
	return &cobra.Command{
		Use:   "check" + v.suffix,
		Short: "Show the differences between the " + v.what + " sources and their en.json files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).Check(cmd.Context(), v.pick(a.targets)...)
		},
	}
}

func (a *app) checkEmptySrcCmd(v variant) *cobra.Command {
	return &cobra.Command{
		Use:   "check-empty-src" + v.suffix,
		Short: "List the " + v.what + " en.json keys that have no source message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).CheckEmptySource(v.pick(a.targets)...)
		},
	}
}

func cleanFlags(cmd *cobra.Command, opts *i18n.CleanOptions) {
	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit with status 1 if empty translations were found")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report without writing any file")
}

func (a *app) cleanCmd(v variant) *cobra.Command {
	var opts i18n.CleanOptions
	var file string
	cmd := &cobra.Command{
		Use:   "clean" + v.suffix,
		Short: "Clean empty translations from one " + v.what + " translation file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).Clean(file, opts, v.pick(a.targets)...)
		},
	}
	cmd.Flags().StringVar(&file, "file", "de.json", "translation file to clean, e.g. de.json")
	cleanFlags(cmd, &opts)
	return cmd
}

func (a *app) cleanAllCmd(v variant) *cobra.Command {
	var opts i18n.CleanOptions
	cmd := &cobra.Command{
		Use:   "clean-all" + v.suffix,
		Short: "Clean empty translations from every " + v.what + " translation file except en.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).CleanAll(opts, v.pick(a.targets)...)
		},
	}
	cleanFlags(cmd, &opts)
	return cmd
}

func (a *app) cleanEmptyCmd(v variant) *cobra.Command {
	var opts i18n.CleanOptions
	cmd := &cobra.Command{
		Use:   "clean-empty" + v.suffix,
		Short: "Clean empty translations from the " + v.what + " en.json files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).CleanEmpty(opts, v.pick(a.targets)...)
		},
	}
	cleanFlags(cmd, &opts)
	return cmd
}

func (a *app) combineCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "combine <file> <file>...",
		Short: "Combine translation files into a single file, later files winning",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).Combine(output, args)
		},
	}
	cmd.Flags().StringVar(&output, "output", "en.json", "file to store the combined translations")
	return cmd
}

func (a *app) sortCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sort <file>",
		Short: "Read a translation file and sort its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tool(false).Sort(args[0], output)
		},
	}
	cmd.Flags().StringVar(&output, "output", "en.json", "file to store the sorted translations")
	return cmd
}

func (a *app) splitCmd() *cobra.Command {
	var inputs string
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split combined translation files into webapp and mobile translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, f := range strings.Split(inputs, ",") {
				if f = strings.TrimSpace(f); f != "" {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return errors.New("--inputs names no files")
			}
			return a.tool(false).Split(cmd.Context(), a.targets, files)
		},
	}
	cmd.Flags().StringVar(&inputs, "inputs", "en.json", `comma-separated combined translation files (e.g. "en.json,es.json,fr.json")`)
	return cmd
}

func (a *app) extractFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract-file <file>",
		Short: "Print the translations found in one source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			translations, err := a.ext.ExtractFile(args[0])
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(dictionary.FromMap(translations).Marshal())
			return err
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			tool := a.newTool(io.Discard, false)
			return mcpserver.NewServer(tool, a.targets, a.logger).ServeStdio()
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check the translations again whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pick := allTargets
			if target != "" {
				t, err := a.targets.Lookup(target)
				if err != nil {
					return err
				}
				pick = func(i18n.Targets) []i18n.Target { return []i18n.Target{t} }
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, pick(a.targets))
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "watch only this target (webapp or mobile)")
	return cmd
}

// watch runs a check per target, then re-runs it after every settled
// change until ctx is done.
func (a *app) watch(ctx context.Context, targets []i18n.Target) error {
	tool := a.tool(false)
	check := func(target i18n.Target) {
		err := tool.Check(ctx, target)
		switch {
		case err == nil:
			a.logger.Info("translations up to date", "target", target.Name)
		case errors.Is(err, i18n.ErrChangesFound):
		default:
			a.logger.Error("check failed", "target", target.Name, "error", err)
		}
	}

	for _, target := range targets {
		check(target)

		w, err := watch.New(func(changed []string) {
			a.logger.Debug("sources changed", "target", target.Name, "files", len(changed))
			check(target)
		}, watch.Options{
			Extensions: scanner.DefaultScanConfig().Extensions,
			Filters:    target.Filters,
		}, a.logger.With("target", target.Name))
		if err != nil {
			return err
		}
		if err := w.Start(target.Roots...); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	<-ctx.Done()
	return nil
}
