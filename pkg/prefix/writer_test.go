package prefix_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/prefix"
	"github.com/convox/logger"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var b bytes.Buffer

	w := prefix.NewWriter(logger.NewWriter("ns=chrome", &b))

	io.WriteString(w, "DevTools listening\r\n[0101/ERROR:")
	io.WriteString(w, "gpu] failed\n\n")

	require.Equal(t, "ns=chrome line=\"DevTools listening\"\nns=chrome line=\"[0101/ERROR:gpu] failed\"\n", b.String())
}

func TestFlush(t *testing.T) {
	var b bytes.Buffer

	w := prefix.NewWriter(logger.NewWriter("ns=chrome", &b))

	io.WriteString(w, "no newline")
	require.Empty(t, b.String())

	w.Flush()
	require.Equal(t, "ns=chrome line=\"no newline\"\n", b.String())
}
