// Package prefix relays the output of a child process into the structured
// log, one entry per output line.
package prefix

import (
	"bytes"
	"strings"
	"sync"

	"github.com/convox/logger"
)

type Writer struct {
	lock    sync.Mutex
	log     *logger.Logger
	partial bytes.Buffer
}

func NewWriter(log *logger.Logger) *Writer {
	return &Writer{log: log}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.partial.Write(p)

	for {
		data := w.partial.Bytes()

		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		w.emit(string(data[:i]))
		w.partial.Next(i + 1)
	}

	return len(p), nil
}

// Flush logs any unterminated trailing output.
func (w *Writer) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.emit(w.partial.String())
	w.partial.Reset()
}

func (w *Writer) emit(line string) {
	line = strings.TrimRight(line, "\r")

	if strings.TrimSpace(line) == "" {
		return
	}

	w.log.Logf("line=%q", line)
}
