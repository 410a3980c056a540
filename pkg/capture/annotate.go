package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
)

var markerColor = color.RGBA{R: 255, A: 255}

const (
	markerRadius = 18
	markerStroke = 3
)

// Annotate draws a ring and crosshair at the click position on a PNG
// screenshot.
func Annotate(data []byte, at structs.Coordinates) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode screenshot")
	}

	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	cx := src.Bounds().Min.X + int(at.X)
	cy := src.Bounds().Min.Y + int(at.Y)

	r2outer := (markerRadius + markerStroke) * (markerRadius + markerStroke)
	r2inner := markerRadius * markerRadius

	for y := cy - markerRadius - markerStroke; y <= cy+markerRadius+markerStroke; y++ {
		for x := cx - markerRadius - markerStroke; x <= cx+markerRadius+markerStroke; x++ {
			if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
				continue
			}

			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy

			ring := d2 >= r2inner && d2 <= r2outer
			cross := (abs(dx) < markerStroke/2+1 || abs(dy) < markerStroke/2+1) && d2 <= r2inner

			if ring || cross {
				img.Set(x, y, markerColor)
			}
		}
	}

	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
