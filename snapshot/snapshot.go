// Package snapshot captures rendered dashboard pages with a headless browser.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// ErrNoBrowser is returned when no Chrome or Chromium binary can be found.
var ErrNoBrowser = errors.New("snapshot: no chrome binary found")

const (
	defaultWidth   = 1400
	defaultHeight  = 900
	defaultWaitFor = "#charts section"
	defaultSettle  = 2 * time.Second
	defaultTimeout = 60 * time.Second
)

// Options tunes a Capturer. Zero values fall back to defaults.
type Options struct {
	ChromeBin string
	Width     int64
	Height    int64
	// WaitFor is a CSS selector that must be visible before capturing.
	WaitFor string
	// Settle is the pause after WaitFor matches, letting charts finish drawing.
	Settle  time.Duration
	Timeout time.Duration
	Retry   *utils.RetryConfig
	Logger  *utils.Logger
}

// Capturer screenshots dashboard pages.
type Capturer struct {
	opts Options
}

// New returns a Capturer with opts completed by defaults.
func New(opts Options) *Capturer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.WaitFor == "" {
		opts.WaitFor = defaultWaitFor
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = utils.Discard()
	}
	if opts.Retry == nil {
		opts.Retry = &utils.RetryConfig{MaxAttempts: 1, Logger: opts.Logger}
	}
	return &Capturer{opts: opts}
}

// Capture loads pageURL and returns a full-page PNG screenshot.
func (c *Capturer) Capture(ctx context.Context, pageURL string) ([]byte, error) {
	bin := c.opts.ChromeBin
	if bin == "" {
		bin = FindChromeBinary()
	}
	if bin == "" {
		return nil, ErrNoBrowser
	}
	c.opts.Logger.Info("[snapshot] Using browser binary: %s", bin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(bin),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(int(c.opts.Width), int(c.opts.Height)),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	var shot []byte
	err := c.opts.Retry.Do(allocCtx, "snapshot "+pageURL, func(ctx context.Context) error {
		// Suppress chromedp log noise
		tabCtx, cancelTab := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.opts.Timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.EmulateViewport(c.opts.Width, c.opts.Height),
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(c.opts.WaitFor, chromedp.ByQuery),
			chromedp.Sleep(c.opts.Settle),
			// Quality 100 makes chromedp capture PNG rather than JPEG.
			chromedp.FullScreenshot(&shot, 100),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: capture %s: %w", pageURL, err)
	}
	c.opts.Logger.Info("[snapshot] Captured %s (%d bytes)", pageURL, len(shot))
	return shot, nil
}

// PageURL builds the dashboard address that opens view with sel applied.
func PageURL(base, view string, sel models.FilterSelection) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("snapshot: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("snapshot: base url %q must be absolute", base)
	}

	q := url.Values{}
	q.Set("view", view)
	for _, d := range models.FilterFields {
		if v := sel.Get(d); v != "" {
			q.Set(string(d), v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FindChromeBinary returns the path of a Chrome or Chromium executable, or ""
// when none is installed. CHROME_BIN takes precedence.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// OutputName is the default file name for a captured view.
func OutputName(view string, sel models.FilterSelection) string {
	parts := []string{view}
	for _, d := range models.FilterFields {
		if v := sel.Get(d); v != "" {
			parts = append(parts, slug(v))
		}
	}
	return strings.Join(parts, "_") + ".png"
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// Dimensions reports the viewport as "WxH".
func (c *Capturer) Dimensions() string {
	return strconv.FormatInt(c.opts.Width, 10) + "x" + strconv.FormatInt(c.opts.Height, 10)
}
