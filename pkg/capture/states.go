package capture

import (
	"context"
	"path/filepath"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/structs"
	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// pageLoad navigates to the viewer. Slow loads are tolerated once the
// timeout passes.
func (s *session) pageLoad(ctx context.Context) error {
	if s.req.URL == "" {
		return errors.New("no viewer url")
	}

	nctx, cancel := context.WithTimeout(ctx, s.Options.PageLoadTimeout)
	defer cancel()

	err := s.browser.Navigate(nctx, s.req.URL)

	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		s.log.Logf("state=%s timeout=%s", s.state, s.Options.PageLoadTimeout)
	default:
		return errors.Wrap(err, "navigate")
	}

	s.screenshot(ctx, keys.StagePageLoad, nil)

	return nil
}

// detectLoginForm reports whether both credential inputs are on the page.
func (s *session) detectLoginForm(ctx context.Context) (bool, error) {
	user, err := s.browser.Exists(ctx, s.Options.Selectors.Username)
	if err != nil {
		return false, err
	}

	pass, err := s.browser.Exists(ctx, s.Options.Selectors.Password)
	if err != nil {
		return false, err
	}

	s.log.Logf("state=%s login-form=%t", s.state, user && pass)

	return user && pass, nil
}

func (s *session) authenticate(ctx context.Context) error {
	if err := s.req.Credentials.Validate(); err != nil {
		return err
	}

	sel := s.Options.Selectors

	if err := s.browser.SetValue(ctx, sel.Username, s.req.Credentials.Username); err != nil {
		return errors.Wrap(err, "username")
	}

	if err := s.browser.SetValue(ctx, sel.Password, s.req.Credentials.Password); err != nil {
		return errors.Wrap(err, "password")
	}

	submit, err := s.browser.Exists(ctx, sel.Submit)
	if err != nil {
		return err
	}

	if submit {
		err = s.browser.Click(ctx, sel.Submit)
	} else {
		err = s.browser.PressEnter(ctx, sel.Password)
	}
	if err != nil {
		return errors.Wrap(err, "submit")
	}

	// the form disappearing is the navigation signal
	err = helpers.WaitContext(ctx, 250*time.Millisecond, s.Options.LoginWait, func() (bool, error) {
		present, err := s.browser.Exists(ctx, sel.Password)
		if err != nil {
			return false, nil
		}
		return !present, nil
	})
	if errors.Is(err, helpers.ErrTimeout) {
		s.log.Logf("state=%s login-wait=timeout", s.state)
		return nil
	}

	return err
}

// awaitReady waits for the document to settle and attaches the download
// listener. The returned func detaches it.
func (s *session) awaitReady(ctx context.Context) (func(), error) {
	err := helpers.WaitContext(ctx, 250*time.Millisecond, s.Options.ReadyTimeout, func() (bool, error) {
		rs, err := s.browser.ReadyState(ctx)
		if err != nil {
			return false, err
		}
		return rs == "complete", nil
	})
	switch {
	case err == nil:
	case errors.Is(err, helpers.ErrTimeout):
		s.log.Logf("state=%s ready=timeout", s.state)
	default:
		return nil, errors.Wrap(err, "ready state")
	}

	if err := helpers.Sleep(ctx, s.Options.SettleDelay); err != nil {
		return nil, err
	}

	detach := s.browser.ListenDownloads(func(e DownloadEvent) {
		s.log.Logf("download=%s state=%s file=%q received=%s total=%s", e.GUID, e.State, e.Filename, humanize.Bytes(uint64(e.Received)), humanize.Bytes(uint64(e.Total)))
	})

	s.screenshot(ctx, keys.StageLogin, nil)

	return detach, nil
}

// triggerArchive clicks the archive control and returns the download
// directory as it was just before the click.
func (s *session) triggerArchive(ctx context.Context) (*downloads, error) {
	before, err := scan(s.dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	at := s.req.Coordinates

	s.log.Logf("state=%s x=%.0f y=%.0f", s.state, at.X, at.Y)

	if err := s.browser.ClickAt(ctx, at.X, at.Y); err != nil {
		return nil, errors.Wrap(err, "archive click")
	}

	s.screenshot(ctx, keys.StageAfterArchive, &structs.Coordinates{X: at.X, Y: at.Y})

	return before, nil
}

// awaitDownload polls for a new video. Partial downloads only count as
// progress. Reaching the ceiling with nothing new is ErrNoVideoDownloaded.
// The ceiling is shortened so that DeadlineMargin of the ctx deadline is left
// for cleanup and the dead-letter path.
func (s *session) awaitDownload(ctx context.Context, before *downloads) (string, error) {
	found := ""
	start := time.Now()

	ceiling, err := s.downloadCeiling(ctx)
	if err != nil {
		return "", err
	}

	err = helpers.WaitContext(ctx, s.Options.PollInterval, ceiling, func() (bool, error) {
		now, err := scan(s.dir)
		if err != nil {
			return false, errors.WithStack(err)
		}

		if name, ok := now.added(before); ok {
			found = name
			return true, nil
		}

		if len(now.partials) > 0 {
			s.log.Logf("state=%s partial=%d bytes=%s elapsed=%s", s.state, len(now.partials), humanize.Bytes(uint64(now.partialBytes())), time.Since(start).Truncate(time.Second))
		}

		return false, nil
	})
	if errors.Is(err, helpers.ErrTimeout) {
		return "", errors.Wrapf(ErrNoVideoDownloaded, "after %s", ceiling)
	}
	if err != nil {
		return "", errors.Wrap(err, "await download")
	}

	s.log.Logf("state=%s file=%q elapsed=%s", s.state, found, time.Since(start).Truncate(time.Millisecond))

	return filepath.Join(s.dir, found), nil
}

func (s *session) downloadCeiling(ctx context.Context) (time.Duration, error) {
	ceiling := s.Options.DownloadTimeout

	dl, ok := ctx.Deadline()
	if !ok {
		return ceiling, nil
	}

	left := time.Until(dl) - s.Options.DeadlineMargin
	if left <= 0 {
		return 0, errors.Wrapf(context.DeadlineExceeded, "await download: %s left before deadline", time.Until(dl).Truncate(time.Millisecond))
	}

	if left < ceiling {
		s.log.Logf("state=%s ceiling=%s clamped=%s", s.state, ceiling, left.Truncate(time.Millisecond))
		ceiling = left
	}

	return ceiling, nil
}

// signOut is best effort. Nothing here can fail the capture.
func (s *session) signOut(ctx context.Context) {
	sel := s.Options.Selectors

	ok, err := s.browser.Exists(ctx, sel.SignOut)
	if err == nil && !ok {
		if menu, _ := s.browser.Exists(ctx, sel.UserMenu); menu {
			if err = s.browser.Click(ctx, sel.UserMenu); err == nil {
				helpers.Sleep(ctx, 500*time.Millisecond)
				ok, err = s.browser.Exists(ctx, sel.SignOut)
			}
		}
	}

	switch {
	case err != nil:
		s.log.Logf("state=%s error=%q", s.state, err)
	case !ok:
		s.log.Logf("state=%s control=missing", s.state)
	default:
		if err := s.browser.Click(ctx, sel.SignOut); err != nil {
			s.log.Logf("state=%s error=%q", s.state, err)
		} else {
			helpers.Sleep(ctx, s.Options.SignOutWait)
		}
	}

	s.screenshot(ctx, keys.StageSignOut, nil)
}
