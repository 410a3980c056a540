// Package capture drives a viewer session in a browser to export the video
// for an alarm. The flow is linear:
//
//	Launch -> PageLoad -> DetectLoginForm -> [Authenticate] -> AwaitReady ->
//	TriggerArchive -> AwaitDownload -> SignOut -> Done
//
// Clicking the archive control uses per-device coordinates because the
// viewer offers no stable selector at that point. A layout change upstream
// breaks capture silently and is only visible in the stage screenshots.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

var log = logger.New("ns=capture")

type State string

const (
	StateLaunch          State = "launch"
	StatePageLoad        State = "page-load"
	StateDetectLoginForm State = "detect-login-form"
	StateAuthenticate    State = "authenticate"
	StateAwaitReady      State = "await-ready"
	StateTriggerArchive  State = "trigger-archive"
	StateAwaitDownload   State = "await-download"
	StateSignOut         State = "sign-out"
	StateDone            State = "done"
)

type Selectors struct {
	Username string
	Password string
	Submit   string
	SignOut  string
	UserMenu string
}

var DefaultSelectors = Selectors{
	Username: `input[name="username"]`,
	Password: `input[name="password"]`,
	Submit:   `button[type="submit"]`,
	SignOut:  `button[aria-label="Sign Out"], a[href*="logout"]`,
	UserMenu: `button[aria-label="User Menu"], [data-testid="user-menu"]`,
}

type Options struct {
	Annotate        bool
	DeadlineMargin  time.Duration
	DownloadRoot    string
	DownloadTimeout time.Duration
	ExecPath        string
	Headless        bool
	LoginWait       time.Duration
	PageLoadTimeout time.Duration
	PollInterval    time.Duration
	ReadyTimeout    time.Duration
	Selectors       Selectors
	SettleDelay     time.Duration
	SignOutWait     time.Duration
	ViewportHeight  int
	ViewportWidth   int
}

// ScreenshotFunc receives a stage screenshot. Errors are logged and ignored.
type ScreenshotFunc func(ctx context.Context, stage string, png []byte) error

type Request struct {
	URL         string
	Credentials *structs.Credentials
	Coordinates structs.Coordinates
	Screenshots ScreenshotFunc
}

type Capturer struct {
	Launcher Launcher
	Options  Options
}

func New(l Launcher, opts Options) *Capturer {
	return &Capturer{Launcher: l, Options: opts.withDefaults()}
}

func (o Options) withDefaults() Options {
	d := o

	if d.DeadlineMargin == 0 {
		d.DeadlineMargin = 15 * time.Second
	}
	if d.DownloadRoot == "" {
		d.DownloadRoot = filepath.Join(os.TempDir(), "downloads")
	}
	if d.DownloadTimeout == 0 {
		d.DownloadTimeout = 118 * time.Second
	}
	if d.LoginWait == 0 {
		d.LoginWait = 10 * time.Second
	}
	if d.PageLoadTimeout == 0 {
		d.PageLoadTimeout = 20 * time.Second
	}
	if d.PollInterval == 0 {
		d.PollInterval = time.Second
	}
	if d.ReadyTimeout == 0 {
		d.ReadyTimeout = 15 * time.Second
	}
	if d.Selectors == (Selectors{}) {
		d.Selectors = DefaultSelectors
	}
	if d.SignOutWait == 0 {
		d.SignOutWait = 2 * time.Second
	}
	if d.ViewportHeight == 0 {
		d.ViewportHeight = 1080
	}
	if d.ViewportWidth == 0 {
		d.ViewportWidth = 1920
	}

	return d
}

// session is the state carried through one capture.
type session struct {
	*Capturer

	browser Browser
	dir     string
	log     *logger.Logger
	req     Request
	state   State
}

// Capture runs the flow once. The browser is always released before it
// returns. On success the caller owns Outcome.Dir and must Cleanup it.
func (c *Capturer) Capture(ctx context.Context, req Request) (out Outcome) {
	id := uuid.NewV4().String()

	s := &session{
		Capturer: c,
		dir:      filepath.Join(c.Options.DownloadRoot, id),
		log:      log.At("capture").Namespace("session=%s", id[:8]).Start(),
		req:      req,
		state:    StateLaunch,
	}

	defer func() {
		if r := recover(); r != nil {
			out = failed(s.state, fmt.Errorf("panic: %v", r))
		}

		if out.Kind != Succeeded {
			os.RemoveAll(s.dir)
			s.log.Logf("state=%s outcome=%s error=%q", out.State, out.Kind, out.Err)
			return
		}

		s.log.Successf("outcome=%s file=%q size=%d", out.Kind, out.FileName, len(out.Video))
	}()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return failed(StateLaunch, errors.WithStack(err))
	}

	b, err := c.Launcher.Launch(ctx, LaunchOptions{
		DownloadDir: s.dir,
		ExecPath:    c.Options.ExecPath,
		Headless:    c.Options.Headless,
		Height:      c.Options.ViewportHeight,
		Width:       c.Options.ViewportWidth,
	})
	if err != nil {
		return failed(StateLaunch, err)
	}

	s.browser = b

	defer func() {
		if err := b.Close(); err != nil {
			s.log.Logf("state=%s close-error=%q", StateDone, err)
		}
	}()

	return s.run(ctx)
}

func (s *session) run(ctx context.Context) Outcome {
	if err := s.enter(StatePageLoad).pageLoad(ctx); err != nil {
		return failed(s.state, err)
	}

	login, err := s.enter(StateDetectLoginForm).detectLoginForm(ctx)
	if err != nil {
		return failed(s.state, err)
	}

	if login {
		if err := s.enter(StateAuthenticate).authenticate(ctx); err != nil {
			return failed(s.state, err)
		}
	}

	detach, err := s.enter(StateAwaitReady).awaitReady(ctx)
	if err != nil {
		return failed(s.state, err)
	}
	defer detach()

	before, err := s.enter(StateTriggerArchive).triggerArchive(ctx)
	if err != nil {
		return failed(s.state, err)
	}

	path, err := s.enter(StateAwaitDownload).awaitDownload(ctx, before)
	if err != nil {
		if errors.Is(err, ErrNoVideoDownloaded) {
			s.enter(StateSignOut).signOut(ctx)
		}
		return failed(StateAwaitDownload, err)
	}

	s.enter(StateSignOut).signOut(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return failed(StateDone, errors.WithStack(err))
	}

	s.enter(StateDone)

	return succeeded(s.dir, path, filepath.Base(path), data)
}

func (s *session) enter(state State) *session {
	s.log.Logf("transition=%s->%s", s.state, state)
	s.state = state
	return s
}

// screenshot captures and hands off a stage screenshot. Failures are logged
// and never affect the flow.
func (s *session) screenshot(ctx context.Context, stage string, marker *structs.Coordinates) {
	if s.req.Screenshots == nil {
		return
	}

	data, err := s.browser.Screenshot(ctx)
	if err != nil {
		s.log.Logf("state=%s screenshot=%s error=%q", s.state, stage, err)
		return
	}

	if marker != nil && s.Options.Annotate {
		if annotated, err := Annotate(data, *marker); err == nil {
			data = annotated
		} else {
			s.log.Logf("state=%s screenshot=%s annotate-error=%q", s.state, stage, err)
		}
	}

	if err := s.req.Screenshots(ctx, stage, data); err != nil {
		s.log.Logf("state=%s screenshot=%s store-error=%q", s.state, stage, err)
	}
}
