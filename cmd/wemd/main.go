package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wemd/config"
	"wemd/misc"
	"wemd/state"
	"wemd/theme"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if data, err := config.Dump(env.Cfg); err == nil {
			name := "config/actual.yaml"
			if len(configFile) > 0 {
				name = "config/" + filepath.Base(configFile)
			}
			env.Rpt.StoreData(name, data)
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if er := env.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to release resources: %w", er))
	}

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		_ = debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit is not used.
var errWasHandled bool

// called before appContext is destroyed, so error could be logged properly
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// reported either by exitErrHandler or on exit directly to stderr
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

const ioHelp = `
SOURCE:
    file to read, "-" or absent - STDIN

DESTINATION:
    file to write, if absent - STDOUT
`

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "prepares markdown editor stylesheets and documents for WeChat publishing",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:               "expand",
				Usage:              "Replaces custom properties in stylesheet with their values",
				OnUsageError:       usageErrorHandler,
				Action:             runExpand,
				ArgsUsage:          "[SOURCE] [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + ioHelp,
			},
			{
				Name:         "resolve",
				Usage:        "Resolves custom properties in inline styles of HTML fragment",
				OnUsageError: usageErrorHandler,
				Action:       runResolve,
				ArgsUsage:    "[SOURCE] [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + ioHelp + `
Every element sees custom properties declared by its ancestors only. When
browser is enabled in configuration computed values are used first.
`,
			},
			{
				Name:         "dark",
				Usage:        "Converts stylesheet colors for WeChat dark mode",
				OnUsageError: usageErrorHandler,
				Action:       runDark,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-expand", Usage: "do not expand custom properties before conversion"},
					&cli.BoolFlag{Name: "explain", Usage: "output classification of every color instead of converted stylesheet"},
				},
				ArgsUsage:          "[SOURCE] [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + ioHelp,
			},
			{
				Name:         "lint",
				Usage:        "Reports custom properties and var() references left in stylesheet",
				OnUsageError: usageErrorHandler,
				Action:       runLint,
				ArgsUsage:    "[SOURCE]",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    file to check, "-" or absent - STDIN

Exits with error when anything was found.
`,
			},
			{
				Name:         "themes",
				Usage:        "Lists and renders themes",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{
						Name:         "list",
						Usage:        "Lists built-in and user themes",
						OnUsageError: usageErrorHandler,
						Action:       runThemesList,
					},
					{
						Name:         "render",
						Usage:        "Outputs publishable stylesheet of a theme",
						OnUsageError: usageErrorHandler,
						Action:       runThemesRender,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: theme.ModeLight.String(), Usage: "`MODE` to render (light, dark)"},
						},
						ArgsUsage: "[ID] [DESTINATION]",
						CustomHelpTemplate: cli.CommandHelpTemplate + `
ID:
    theme to render, if absent - default theme from configuration

DESTINATION:
    file to write, if absent - STDOUT
`,
					},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`,
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log is either not set yet (argument parsing) or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
