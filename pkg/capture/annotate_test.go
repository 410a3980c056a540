package capture_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/stretchr/testify/require"
)

func TestAnnotate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 100))))

	data, err := capture.Annotate(buf.Bytes(), structs.Coordinates{X: 50, Y: 50})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	red := color.RGBAModel.Convert(color.RGBA{R: 255, A: 255})

	require.Equal(t, red, color.RGBAModel.Convert(img.At(50, 50)))
	require.Equal(t, red, color.RGBAModel.Convert(img.At(50+19, 50)))
	require.NotEqual(t, red, color.RGBAModel.Convert(img.At(5, 5)))
}

func TestAnnotateEdge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))

	_, err := capture.Annotate(buf.Bytes(), structs.Coordinates{X: 500, Y: 500})
	require.NoError(t, err)
}

func TestAnnotateInvalid(t *testing.T) {
	_, err := capture.Annotate([]byte("not a png"), structs.Coordinates{})
	require.Error(t, err)
}
