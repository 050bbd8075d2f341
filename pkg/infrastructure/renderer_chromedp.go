package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ChromedpCapturer screenshots the rendered resume surface with headless
// Chrome.
type ChromedpCapturer struct {
	ExecPath string
	Selector string
	Timeout  time.Duration
	// ViewportWidth is the CSS pixel width of the browser window. 210mm at
	// 96dpi is about 794px.
	ViewportWidth int64
	log           *slog.Logger
}

func NewChromedpCapturer(execPath, selector string, timeout time.Duration, logger *slog.Logger) *ChromedpCapturer {
	if selector == "" {
		selector = "#resume"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpCapturer{ExecPath: execPath, Selector: selector, Timeout: timeout, ViewportWidth: 794, log: logger}
}

// Capture loads html in a fresh browser and returns a PNG of the surface
// element at scale device pixels per CSS pixel.
func (r *ChromedpCapturer) Capture(ctx context.Context, html []byte, scale float64) ([]byte, error) {
	if len(html) == 0 {
		return nil, errors.New("capture: empty document")
	}
	if scale <= 0 {
		scale = 1
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p := r.ExecPath; p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	} else if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return nil, err
	}

	start := time.Now()
	var buf []byte
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(r.ViewportWidth, 1123),
		// print media so the capture matches what the browser would print
		emulation.SetEmulatedMedia().WithMedia("print"),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitVisible(r.Selector, chromedp.ByQuery),
		chromedp.ScreenshotScale(r.Selector, scale, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", r.Selector, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("capture %s: surface has no area", r.Selector)
	}
	r.log.Debug("capture: done", "bytes", len(buf), "scale", scale, "elapsed", time.Since(start))
	return buf, nil
}
