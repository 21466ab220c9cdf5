// Package browser computes styles with a headless Chrome instance driven
// over the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"wemd/dom"
)

// DefaultTimeout limits a single ComputeStyles call when none is configured.
const DefaultTimeout = 10 * time.Second

// Computer implements dom.StyleComputer on top of a single browser tab.
// Calls are serialized.
type Computer struct {
	log     *zap.Logger
	timeout time.Duration

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu sync.Mutex
}

var _ dom.StyleComputer = (*Computer)(nil)

// Options control how the browser is started.
type Options struct {
	ExecPath string        // empty to let chromedp find Chrome
	Timeout  time.Duration // per ComputeStyles call
	Headless bool
}

// New starts the browser and opens a blank tab. It fails when browser
// cannot be started.
func New(ctx context.Context, opts Options, log *zap.Logger) (*Computer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	c := &Computer{log: log.Named("browser"), timeout: opts.Timeout}

	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	c.browserCtx, c.browserCancel = chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(c.log.Sugar().Debugf),
		chromedp.WithErrorf(c.log.Sugar().Debugf),
	)

	startCtx, cancel := context.WithTimeout(c.browserCtx, opts.Timeout)
	defer cancel()
	if err := chromedp.Run(startCtx, chromedp.Navigate("about:blank")); err != nil {
		c.Close()
		return nil, fmt.Errorf("unable to start browser: %w", err)
	}
	c.log.Debug("Browser started", zap.String("exec", opts.ExecPath), zap.Bool("headless", opts.Headless), zap.Duration("timeout", opts.Timeout))
	return c, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	all := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	// defaults are headless already
	if !opts.Headless {
		all = append(all, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		all = append(all, chromedp.ExecPath(opts.ExecPath))
	}
	return append(all,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
	)
}

// Close stops the browser. It is safe to call more than once.
func (c *Computer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCancel != nil {
		c.browserCancel()
		c.browserCancel = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
	}
	return nil
}

// computeScript renders the fragment in an offscreen host element which is
// always removed before returning. Results are in query order.
const computeScript = `(() => {
	const req = %s;
	const host = document.createElement('div');
	host.setAttribute('aria-hidden', 'true');
	host.style.cssText = 'position:absolute;left:-100000px;top:0;width:680px;';
	document.body.appendChild(host);
	try {
		host.innerHTML = req.html;
		return req.queries.map(q => {
			const el = host.querySelector('[%s="' + q.node + '"]');
			return el ? getComputedStyle(el).getPropertyValue(q.property).trim() : '';
		});
	} finally {
		host.remove();
	}
})()`

type request struct {
	HTML    string  `json:"html"`
	Queries []query `json:"queries"`
}

type query struct {
	Node     int    `json:"node"`
	Property string `json:"property"`
}

// ComputeStyles implements dom.StyleComputer.
func (c *Computer) ComputeStyles(ctx context.Context, fragment string, queries []dom.Query) (map[dom.Query]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCancel == nil {
		return nil, fmt.Errorf("browser is closed")
	}

	req := request{HTML: fragment, Queries: make([]query, len(queries))}
	for i, q := range queries {
		req.Queries[i] = query{Node: q.Node, Property: q.Property}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("unable to encode style request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(c.browserCtx, c.timeout)
	defer cancel()
	// caller's cancellation also stops the evaluation
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var values []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(computeScript, payload, dom.NodeAttr), &values)); err != nil {
		return nil, fmt.Errorf("unable to compute styles: %w", err)
	}
	if len(values) != len(queries) {
		return nil, fmt.Errorf("unexpected number of computed values: got %d, want %d", len(values), len(queries))
	}

	res := make(map[dom.Query]string, len(queries))
	for i, q := range queries {
		res[q] = values[i]
	}
	c.log.Debug("Computed styles", zap.Int("queries", len(queries)))
	return res, nil
}
