package capture

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/alarmvault/alarmvault/pkg/prefix"
	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/pkg/errors"
)

// Chrome launches headless Chrome sessions through the DevTools protocol.
type Chrome struct{}

type chromeBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc
	output *prefix.Writer
}

func (Chrome) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	log := log.At("launch").Namespace("headless=%t", opts.Headless).Start()

	output := prefix.NewWriter(log.At("chrome"))

	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.CombinedOutput(output),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-zygote", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}

	actx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), flags...)
	bctx, cancelBrowser := chromedp.NewContext(actx, chromedp.WithErrorf(func(format string, args ...interface{}) {
		log.Logf("chromedp-error=%q", errors.Errorf(format, args...).Error())
	}))

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	b := &chromeBrowser{ctx: bctx, cancel: cancel, output: output}

	lctx, done := b.scope(ctx)
	defer done()

	err := chromedp.Run(lctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		cancel()
		return nil, log.Error(errors.Wrap(err, "launch browser"))
	}

	log.Success()

	return b, nil
}

// scope derives an action context from the browser context that also ends
// when the caller's context does.
func (b *chromeBrowser) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	var sctx context.Context
	var cancel context.CancelFunc

	if dl, ok := ctx.Deadline(); ok {
		sctx, cancel = context.WithDeadline(b.ctx, dl)
	} else {
		sctx, cancel = context.WithCancel(b.ctx)
	}

	stop := context.AfterFunc(ctx, cancel)

	return sctx, func() {
		stop()
		cancel()
	}
}

func (b *chromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	sctx, done := b.scope(ctx)
	defer done()

	if err := chromedp.Run(sctx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.WithStack(err)
	}

	return nil
}

func (b *chromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *chromeBrowser) ReadyState(ctx context.Context) (string, error) {
	var state string

	if err := b.run(ctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
		return "", err
	}

	return state, nil
}

func (b *chromeBrowser) Exists(ctx context.Context, selector string) (bool, error) {
	var ok bool

	js := "document.querySelector(" + strconv.Quote(selector) + ") !== null"

	if err := b.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return false, err
	}

	return ok, nil
}

func (b *chromeBrowser) SetValue(ctx context.Context, selector, value string) error {
	return b.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (b *chromeBrowser) Click(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (b *chromeBrowser) PressEnter(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
}

func (b *chromeBrowser) ClickAt(ctx context.Context, x, y float64) error {
	return b.run(ctx, chromedp.MouseClickXY(x, y))
}

func (b *chromeBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte

	if err := b.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}

	return buf, nil
}

// ListenDownloads forwards download events. chromedp listeners cannot be
// removed so detaching flips a flag the listener checks.
func (b *chromeBrowser) ListenDownloads(fn func(DownloadEvent)) func() {
	var detached int32

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		if atomic.LoadInt32(&detached) == 1 {
			return
		}

		switch e := ev.(type) {
		case *browser.EventDownloadWillBegin:
			fn(DownloadEvent{GUID: e.GUID, State: "begin", Filename: e.SuggestedFilename})
		case *browser.EventDownloadProgress:
			fn(DownloadEvent{GUID: e.GUID, State: string(e.State), Received: int64(e.ReceivedBytes), Total: int64(e.TotalBytes)})
		}
	})

	return func() {
		atomic.StoreInt32(&detached, 1)
	}
}

func (b *chromeBrowser) Close() error {
	b.cancel()
	b.output.Flush()
	return nil
}
