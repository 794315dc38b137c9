// Package snapshot renders a console headlessly and writes its screen as PNG.
package snapshot

import (
	"image"
	"image/png"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/jyane/nescore/nes"
)

// Run steps the console until the given number of frames were completed.
func Run(console nes.Console, frames int) (*image.RGBA, error) {
	if frames < 1 {
		return nil, errors.Errorf("frames must be positive, got %d", frames)
	}
	var frame *image.RGBA
	for done := 0; done < frames; {
		if _, err := console.Step(); err != nil {
			return nil, errors.Wrapf(err, "frame %d", done)
		}
		if f, ok := console.Frame(); ok {
			frame = f
			done++
		}
	}
	return frame, nil
}

// Scale enlarges the frame by an integer factor without smoothing.
func Scale(frame *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		dst := image.NewRGBA(frame.Bounds())
		draw.Copy(dst, image.Point{}, frame, frame.Bounds(), draw.Src, nil)
		return dst
	}
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), frame, b, draw.Src, nil)
	return dst
}

// Write runs the console for frames frames and encodes the last one, scaled, to w.
func Write(w io.Writer, console nes.Console, frames, scale int) error {
	frame, err := Run(console, frames)
	if err != nil {
		return err
	}
	if err := png.Encode(w, Scale(frame, scale)); err != nil {
		return errors.Wrap(err, "failed to encode PNG")
	}
	glog.V(2).Infof("Snapshot written after %d frames, scale %d", frames, scale)
	return nil
}
