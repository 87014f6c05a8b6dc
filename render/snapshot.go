package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"job-insights/utils"
)

// Snapshotter screenshots rendered pages with headless Chrome.
type Snapshotter struct {
	chromeBin string
	logger    *utils.Logger
	pool      *utils.WorkerPool
	timeout   time.Duration
}

func NewSnapshotter(chromeBin string, concurrency, rateLimitMs int, logger *utils.Logger) *Snapshotter {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &Snapshotter{
		chromeBin: chromeBin,
		logger:    logger,
		pool:      utils.NewWorkerPool(concurrency, rateLimitMs),
		timeout:   45 * time.Second,
	}
}

// Snapshot writes <view>.html and <view>.png under dir for every page and
// returns the PNG paths in page order. A page that fails is logged and
// skipped; the joined error reports every failure.
func (s *Snapshotter) Snapshot(ctx context.Context, pages []Page, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("render: create output dir: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("render: resolve %q: %w", dir, err)
	}

	s.logger.Info("[render] Using browser binary: %s", s.chromeBin)
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1280, 900),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// one browser, one tab per page
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("render: start browser: %w", err)
	}

	paths := make([]string, len(pages))
	var errs utils.ErrorGroup
	for i, page := range pages {
		i, page := i, page
		s.pool.Submit(func() {
			path, err := s.capture(browserCtx, page, absDir)
			if err != nil {
				s.logger.Error("[render] %s: %v", page.View, err)
				errs.Add(fmt.Errorf("%s: %w", page.View, err))
				return
			}
			s.logger.Info("[render] wrote %s", path)
			paths[i] = path
		})
	}
	s.pool.Wait()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	if failed := errs.Errors(); len(failed) > 0 {
		return out, fmt.Errorf("render: %d of %d snapshots failed: %w", len(failed), len(pages), failed[0])
	}
	return out, nil
}

func (s *Snapshotter) capture(browserCtx context.Context, page Page, dir string) (string, error) {
	htmlPath := filepath.Join(dir, page.View+".html")
	if err := os.WriteFile(htmlPath, page.HTML, 0644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()

	var png []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	pngPath := filepath.Join(dir, page.View+".png")
	if err := os.WriteFile(pngPath, png, 0644); err != nil {
		return "", fmt.Errorf("write png: %w", err)
	}
	return pngPath, nil
}

// findChromeBinary looks for a Chrome or Chromium executable.
func findChromeBinary() string {
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
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
