package capture

import (
	"os"

	"github.com/gobwas/glob"
)

var (
	videoGlob   = glob.MustCompile("*.mp4")
	partialGlob = glob.MustCompile("*.{crdownload,tmp}")
)

// downloads is a snapshot of the files in a download directory.
type downloads struct {
	videos   map[string]int64
	partials map[string]int64
}

func scan(dir string) (*downloads, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	d := &downloads{videos: map[string]int64{}, partials: map[string]int64{}}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		var size int64

		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}

		switch name := e.Name(); {
		case videoGlob.Match(name):
			d.videos[name] = size
		case partialGlob.Match(name):
			d.partials[name] = size
		}
	}

	return d, nil
}

// added returns a video present in d but not in before, preferring the
// largest when several appeared at once.
func (d *downloads) added(before *downloads) (string, bool) {
	name := ""
	size := int64(-1)

	for n, s := range d.videos {
		if _, ok := before.videos[n]; ok {
			continue
		}
		if s > size {
			name, size = n, s
		}
	}

	return name, name != ""
}

func (d *downloads) partialBytes() int64 {
	var total int64

	for _, s := range d.partials {
		total += s
	}

	return total
}
