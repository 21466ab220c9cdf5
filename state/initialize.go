package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wemd/browser"
	"wemd/cache"
	"wemd/dark"
	"wemd/dom"
	"wemd/theme"
	"wemd/vars"
)

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// Initialize builds transformation components according to configuration.
// Cfg and Log must be set.
func (e *LocalEnv) Initialize() error {
	if e.Cfg == nil {
		return errors.New("configuration is not loaded")
	}
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	conv := &e.Cfg.Conversion

	e.Expander = vars.NewExpander(e.Log)
	e.Converter = dark.NewConverter(cache.NewFIFO[uint64, string](conv.CacheSize), e.Log)

	themes, err := theme.NewStore(e.Converter, e.Log)
	if err != nil {
		return err
	}
	e.Themes = themes

	if len(conv.ThemeDir) > 0 {
		n, err := themes.LoadDir(conv.ThemeDir)
		if err != nil {
			// themes which could be loaded are still usable
			e.Log.Warn("Some themes were not loaded", zap.String("dir", conv.ThemeDir), zap.Error(err))
		}
		e.Log.Debug("Loaded user themes", zap.String("dir", conv.ThemeDir), zap.Int("count", n))
		if err := e.Rpt.StoreCopy("themes", conv.ThemeDir); err != nil {
			e.Log.Warn("Unable to put themes into report", zap.Error(err))
		}
	}

	if len(conv.CustomCSSPath) > 0 {
		data, err := os.ReadFile(conv.CustomCSSPath)
		if err != nil {
			return fmt.Errorf("unable to read custom stylesheet: %w", err)
		}
		themes.SetCustomCSS(string(data))
		e.Rpt.StoreData("custom.css", data)
	}

	if _, ok := themes.Get(conv.DefaultTheme); !ok {
		return fmt.Errorf("default theme %q: %w", conv.DefaultTheme, theme.ErrNotFound)
	}
	return nil
}

// Resolver returns inline variable resolver. Browser is started on first
// call when enabled, failure to start it is not fatal: resolver falls back
// to textual substitution.
func (e *LocalEnv) Resolver(ctx context.Context) *dom.Resolver {
	if e.resolver != nil {
		return e.resolver
	}

	var computer dom.StyleComputer
	if b := e.Cfg.Browser; b.Enable {
		c, err := browser.New(ctx, browser.Options{ExecPath: b.ExecPath, Timeout: b.Timeout, Headless: b.Headless}, e.Log)
		if err != nil {
			e.Log.Warn("Unable to start browser, computed styles will not be used", zap.Error(err))
		} else {
			e.browser = c
			computer = c
		}
	}
	e.resolver = dom.NewResolver(computer, e.Log)
	return e.resolver
}

// Close releases everything Initialize and Resolver acquired.
func (e *LocalEnv) Close() (err error) {
	if e.browser != nil {
		err = multierr.Append(err, e.browser.Close())
		e.browser = nil
	}
	e.resolver = nil
	return err
}
