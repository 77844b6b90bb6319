package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// BrowserOptions configures a BrowserStore.
type BrowserOptions struct {
	// Origin is the page whose localStorage holds the entries, e.g. the
	// URL the web UI is served from.
	Origin string
	// KeyPrefix is prepended to every key ("levelup_" matches the web UI).
	KeyPrefix string
	// ProfileDir, when set, is used as Chrome's user data dir so entries
	// survive between runs.
	ProfileDir string
	ExecPath   string
	Headless   bool
}

// BrowserStore reads and writes the localStorage of a real browser profile
// through headless Chrome, so the CLI and the web UI share one store.
type BrowserStore struct {
	ctx    context.Context
	cancel context.CancelFunc
	prefix string
}

type storedItem struct {
	Present bool   `json:"present"`
	Value   string `json:"value"`
}

// OpenBrowser launches Chrome and navigates to opts.Origin.
func OpenBrowser(parent context.Context, opts BrowserOptions) (*BrowserStore, error) {
	if opts.Origin == "" {
		return nil, errors.New("browser store requires an origin")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	if err := chromedp.Run(ctx, chromedp.Navigate(opts.Origin)); err != nil {
		cancel()
		return nil, errors.Wrapf(err, "navigate to %s", opts.Origin)
	}

	return &BrowserStore{ctx: ctx, cancel: cancel, prefix: opts.KeyPrefix}, nil
}

func (b *BrowserStore) Close() error {
	b.cancel()
	return nil
}

func (b *BrowserStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var item storedItem
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(getScript(b.prefix+key), &item)); err != nil {
		return nil, false, errors.Wrapf(err, "get %q", key)
	}
	if !item.Present {
		return nil, false, nil
	}
	return []byte(item.Value), true, nil
}

func (b *BrowserStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var ok bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(setScript(b.prefix+key, value), &ok)); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (b *BrowserStore) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var swapped bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(casScript(b.prefix+key, old, next), &swapped)); err != nil {
		return false, errors.Wrapf(err, "compare-and-swap %q", key)
	}
	return swapped, nil
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func getScript(key string) string {
	return fmt.Sprintf(`(() => {
	const v = localStorage.getItem(%s);
	return {present: v !== null, value: v === null ? "" : v};
})()`, jsString(key))
}

func setScript(key string, value []byte) string {
	return fmt.Sprintf(`(() => {
	localStorage.setItem(%s, %s);
	return true;
})()`, jsString(key), jsString(string(value)))
}

// casScript runs the comparison and the write in one evaluation; the page's
// single JS thread makes it atomic.
func casScript(key string, old, next []byte) string {
	expected := "null"
	if old != nil {
		expected = jsString(string(old))
	}
	return fmt.Sprintf(`(() => {
	const k = %s;
	if (localStorage.getItem(k) !== %s) {
		return false;
	}
	localStorage.setItem(k, %s);
	return true;
})()`, jsString(key), expected, jsString(string(next)))
}
