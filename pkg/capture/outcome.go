package capture

import (
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrNoVideoDownloaded is the failure that routes an alarm to the
	// application dead-letter queue.
	ErrNoVideoDownloaded = errors.New("no video files downloaded")
)

type Kind int

const (
	Succeeded Kind = iota
	NoVideoDownloaded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case NoVideoDownloaded:
		return "no-video"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of one capture attempt. Video and FileName are set
// only when Kind is Succeeded; Err is set otherwise.
type Outcome struct {
	Kind     Kind
	Video    []byte
	FileName string
	Path     string
	Dir      string
	State    State
	Err      error
}

// Cleanup removes the session download directory.
func (o Outcome) Cleanup() error {
	if o.Dir == "" {
		return nil
	}
	return os.RemoveAll(o.Dir)
}

func succeeded(dir, path, name string, video []byte) Outcome {
	return Outcome{Kind: Succeeded, Dir: dir, Path: path, FileName: name, Video: video, State: StateDone}
}

func failed(state State, err error) Outcome {
	if errors.Is(err, ErrNoVideoDownloaded) {
		return Outcome{Kind: NoVideoDownloaded, State: state, Err: err}
	}
	return Outcome{Kind: Failed, State: state, Err: errors.Wrapf(err, "capture failed at %s", state)}
}
