package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"cartographer/internal/fileutil"
)

// Session owns one Chrome instance with a single page, reused sequentially
// across all items of a run. It is not safe for concurrent use; the
// pipelines are strictly sequential by design.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	downloadDir   string

	mu        sync.Mutex
	suggested map[string]string
	armed     chan Download
}

// Options configures session construction.
type Options struct {
	Headless bool
	// DownloadDir receives in-flight payloads before SaveDownload moves
	// them into the maps directory. Empty means a fresh temp directory.
	DownloadDir string
}

// NewSession launches Chrome and prepares download capture.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	downloadDir := opts.DownloadDir
	if downloadDir == "" {
		dir, err := os.MkdirTemp("", "cartographer-downloads-")
		if err != nil {
			return nil, fmt.Errorf("create download directory: %w", err)
		}
		downloadDir = dir
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	session := &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		downloadDir:   downloadDir,
		suggested:     make(map[string]string),
	}

	// Name downloads by GUID so concurrent suggested names never clash on
	// disk, and surface progress events for completion detection.
	err := chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	chromedp.ListenTarget(browserCtx, session.onTargetEvent)
	return session, nil
}

// Close tears down the page and browser process.
func (s *Session) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

func (s *Session) onTargetEvent(event any) {
	switch ev := event.(type) {
	case *browser.EventDownloadWillBegin:
		s.mu.Lock()
		s.suggested[ev.GUID] = ev.SuggestedFilename
		s.mu.Unlock()
	case *browser.EventDownloadProgress:
		if ev.State != browser.DownloadProgressStateCompleted {
			return
		}
		s.mu.Lock()
		armed := s.armed
		s.armed = nil
		name := s.suggested[ev.GUID]
		delete(s.suggested, ev.GUID)
		s.mu.Unlock()
		if armed != nil {
			armed <- Download{GUID: ev.GUID, SuggestedFilename: name}
		}
	}
}

// ArmDownload implements Driver.
func (s *Session) ArmDownload() (<-chan Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed != nil {
		return nil, errors.New("a download is already armed")
	}
	s.armed = make(chan Download, 1)
	return s.armed, nil
}

// run executes actions on the session page, bounded by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := mergeContexts(s.browserCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// mergeContexts keeps the browser's target while honoring the caller's
// deadline and cancellation.
func mergeContexts(browserCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	var merged context.Context
	var cancel context.CancelFunc
	if deadline, ok := callerCtx.Deadline(); ok {
		merged, cancel = context.WithDeadline(browserCtx, deadline)
	} else {
		merged, cancel = context.WithCancel(browserCtx)
	}
	stop := context.AfterFunc(callerCtx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

// Navigate implements Driver. A fresh load per item is intentional; the
// page carries per-upload state that must not leak between items.
//
// WaitReady("body") only gates the initial document, not network idleness.
// That is deliberate: the page is an SPA that keeps fetching after load,
// so the real settling gate is per control — every subsequent driver call
// WaitVisibles its own selector before acting, bounded by the step timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Upload implements Driver.
func (s *Session) Upload(ctx context.Context, selector, filePath string) error {
	absolute, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve upload path: %w", err)
	}
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, []string{absolute}, chromedp.ByQuery),
	)
}

// Fill implements Driver.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// Click implements Driver.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// ClickText implements Driver. CSS alone cannot match on text content, so
// the match-and-click happens in page script after the selector becomes
// visible.
func (s *Session) ClickText(ctx context.Context, selector, text string) error {
	script := fmt.Sprintf(`(() => {
		for (const el of document.querySelectorAll(%q)) {
			if ((el.textContent || '').includes(%q)) { el.click(); return true; }
		}
		return false;
	})()`, selector, text)

	var clicked bool
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &clicked),
	)
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element matching %q contains %q", selector, text)
	}
	return nil
}

// SelectOption implements Driver. The value is set in page script so the
// framework behind the page observes a real change event.
func (s *Session) SelectOption(ctx context.Context, selector, value string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.value = %q;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return el.value === %q;
	})()`, selector, value, value)

	var selected bool
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &selected),
	)
	if err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("could not select %q on %q", value, selector)
	}
	return nil
}

type boundingRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DragSlider implements Driver.
func (s *Session) DragSlider(ctx context.Context, selector string, fromFrac, toFrac float64, steps int) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return null;
		const r = el.getBoundingClientRect();
		return {x: r.x, y: r.y, width: r.width, height: r.height};
	})()`, selector)

	var rect *boundingRect
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &rect),
	)
	if err != nil {
		return err
	}
	if rect == nil || rect.Width == 0 {
		return fmt.Errorf("no bounding box for %q", selector)
	}

	startX := rect.X + rect.Width*fromFrac
	endX := rect.X + rect.Width*toFrac
	y := rect.Y + rect.Height/2

	if steps < 1 {
		steps = 1
	}
	actions := []chromedp.Action{
		input.DispatchMouseEvent(input.MouseMoved, startX, y),
		input.DispatchMouseEvent(input.MousePressed, startX, y).
			WithButton(input.Left).
			WithClickCount(1),
	}
	for i := 1; i <= steps; i++ {
		x := startX + (endX-startX)*float64(i)/float64(steps)
		actions = append(actions, input.DispatchMouseEvent(input.MouseMoved, x, y))
	}
	actions = append(actions,
		input.DispatchMouseEvent(input.MouseReleased, endX, y).
			WithButton(input.Left).
			WithClickCount(1),
	)
	return s.run(ctx, actions...)
}

// SaveDownload implements Driver.
func (s *Session) SaveDownload(ctx context.Context, dl Download, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := dl.SuggestedFilename
	if name == "" {
		name = dl.GUID + ".zip"
	}
	source := filepath.Join(s.downloadDir, dl.GUID)
	target := fileutil.UniquePath(filepath.Join(destDir, name))
	if err := fileutil.MoveFile(source, target); err != nil {
		return "", fmt.Errorf("persist download: %w", err)
	}
	return target, nil
}
