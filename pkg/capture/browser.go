package capture

import "context"

// Browser is the set of page interactions the capture flow needs. Selectors
// are CSS selectors; coordinates are viewport pixels.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	ReadyState(ctx context.Context) (string, error)
	Exists(ctx context.Context, selector string) (bool, error)
	SetValue(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	PressEnter(ctx context.Context, selector string) error
	ClickAt(ctx context.Context, x, y float64) error
	Screenshot(ctx context.Context) ([]byte, error)

	// ListenDownloads reports download lifecycle events until the returned
	// detach func is called.
	ListenDownloads(fn func(DownloadEvent)) (detach func())

	Close() error
}

// Launcher starts an isolated browser session.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

type LaunchOptions struct {
	DownloadDir string
	ExecPath    string
	Headless    bool
	Height      int
	Width       int
}

type DownloadEvent struct {
	GUID     string
	State    string
	Filename string
	Received int64
	Total    int64
}
