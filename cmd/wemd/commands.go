package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"wemd/config"
	"wemd/css"
	"wemd/dark"
	"wemd/state"
	"wemd/theme"
)

const stdio = "-"

// prepareEnv returns environment with transformation components ready.
func prepareEnv(ctx context.Context) (*state.LocalEnv, error) {
	env := state.EnvFromContext(ctx)
	if env.Themes == nil {
		if err := env.Initialize(); err != nil {
			return nil, fmt.Errorf("unable to initialize: %w", err)
		}
	}
	return env, nil
}

func sourceName(name string) string {
	if len(name) == 0 || name == stdio {
		return "STDIN"
	}
	return name
}

func openSource(name string) (io.ReadCloser, error) {
	if len(name) == 0 || name == stdio {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open source '%s': %w", name, err)
	}
	return f, nil
}

func readSource(env *state.LocalEnv, name string) (string, error) {
	r, err := openSource(name)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", sourceName(name), err)
	}
	env.Rpt.StoreData(reportName("source", name), data)
	return string(data), nil
}

// readDocument reads HTML converting it to UTF-8, encoding is detected from
// BOM or meta tags.
func readDocument(env *state.LocalEnv, name string) (string, error) {
	r, err := openSource(name)
	if err != nil {
		return "", err
	}
	defer r.Close()

	utf8, err := charset.NewReader(r, "")
	if err != nil {
		return "", fmt.Errorf("unable to detect encoding of '%s': %w", sourceName(name), err)
	}
	data, err := io.ReadAll(utf8)
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", sourceName(name), err)
	}
	env.Rpt.StoreData(reportName("source", name), data)
	return string(data), nil
}

func writeDestination(env *state.LocalEnv, name, text string) error {
	env.Rpt.StoreData(reportName("result", name), []byte(text))

	if len(name) == 0 || name == stdio {
		if _, err := io.WriteString(os.Stdout, text); err != nil {
			return fmt.Errorf("unable to write result: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		return fmt.Errorf("unable to write destination '%s': %w", name, err)
	}
	env.Log.Info("Result written", zap.String("file", name))
	return nil
}

func reportName(kind, name string) string {
	if len(name) == 0 || name == stdio {
		return kind + "/stdio"
	}
	return kind + "/" + filepath.Base(name)
}

func warnExtraArgs(env *state.LocalEnv, cmd *cli.Command, max int) {
	if cmd.Args().Len() > max {
		env.Log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[max:]))
	}
}

func runExpand(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 2)

	text, err := readSource(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	res := env.Expander.Expand(text)
	if len(res.Unresolved) > 0 {
		env.Log.Warn("Some references could not be resolved", zap.Strings("names", res.Unresolved))
	}
	env.Log.Debug("Expanded", zap.Int("variables", res.Variables), zap.Strings("fallback", res.FellBack))
	return writeDestination(env, cmd.Args().Get(1), res.Text)
}

func runResolve(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 2)

	doc, err := readDocument(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	out, rep, err := env.Resolver(ctx).ResolveWithReport(ctx, doc)
	if err != nil {
		return fmt.Errorf("unable to resolve inline variables: %w", err)
	}
	if rep.Unresolved > 0 || rep.Invalid > 0 {
		env.Log.Warn("Some inline variables could not be resolved",
			zap.Int("unresolved", rep.Unresolved), zap.Int("invalid", rep.Invalid))
	}
	return writeDestination(env, cmd.Args().Get(1), out)
}

func runDark(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 2)

	text, err := readSource(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	if !cmd.Bool("no-expand") {
		text = env.Expander.Expand(text).Text
	}
	if cmd.Bool("explain") {
		return writeDestination(env, cmd.Args().Get(1), dark.Explain(text))
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("explain.txt", []byte(dark.Explain(text)))
	}
	return writeDestination(env, cmd.Args().Get(1), env.Converter.Convert(text))
}

func runLint(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 1)

	text, err := readSource(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	findings := css.Lint(text)
	if len(findings) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, f := range findings {
		line, col := position(text, f.Offset)
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n", sourceName(cmd.Args().Get(0)), line, col, f.Kind, f.Text)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fmt.Errorf("%d problem(s) found", len(findings))
}

// position converts byte offset to 1-based line and column.
func position(text string, offset int) (line, col int) {
	offset = min(offset, len(text))
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndexByte(before, '\n')
	return line, col
}

func runThemesList(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 0)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, t := range env.Themes.List() {
		kind := "user"
		if t.BuiltIn {
			kind = "built-in"
		}
		def := ""
		if t.ID == env.Cfg.Conversion.DefaultTheme {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, kind, def)
	}
	return w.Flush()
}

func runThemesRender(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareEnv(ctx)
	if err != nil {
		return err
	}
	warnExtraArgs(env, cmd, 2)

	mode, err := theme.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}
	id := cmd.Args().Get(0)
	if len(id) == 0 {
		id = env.Cfg.Conversion.DefaultTheme
	}
	out, err := env.Themes.Render(id, mode)
	if err != nil {
		return fmt.Errorf("unable to render theme: %w", err)
	}
	return writeDestination(env, cmd.Args().Get(1), out)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 1)

	var (
		err  error
		data []byte
		kind string
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	env.Log.Debug("Outputting configuration", zap.String("state", kind))
	return writeDestination(env, cmd.Args().Get(0), string(data))
}
