// Package render turns a source image into a PNG touch icon.
package render // import "github.com/nicolagi/touchicon/render"

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nicolagi/touchicon/source"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

var (
	ErrUnknownFormat = errors.New("unknown source image format")
	// ErrDecode indicates the source bytes are not a valid image of the
	// declared format.
	ErrDecode = errors.New("could not decode source image")
)

type Transform interface {
	Resize(img source.Image, width, height int) ([]byte, error)
}

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/png":  png.Decode,
	"image/jpeg": jpeg.Decode,
	"image/jpg":  jpeg.Decode,
	"image/gif":  gif.Decode,
	"image/webp": webp.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
}

// Decode decodes img according to its declared format rather than by
// sniffing.
func Decode(img source.Image) (image.Image, error) {
	decode, ok := decoders[img.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, img.Format)
	}
	m, err := decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, img.Format, err)
	}
	return m, nil
}

// Imaging resizes with a triangle filter, keeping the aspect ratio of the
// source: a non-square source yields an icon that fits within width x height.
type Imaging struct {
	Filter imaging.ResampleFilter
}

func New() *Imaging {
	return &Imaging{Filter: imaging.Linear}
}

func (t *Imaging) Resize(img source.Image, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid size %dx%d", width, height)
	}
	src, err := Decode(img)
	if err != nil {
		return nil, err
	}
	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), width, height)
	dst := imaging.Resize(src, w, h, t.Filter)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return nil, fmt.Errorf("could not encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales srcW x srcH, up or down, to the largest size within
// maxW x maxH with the same aspect ratio.
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW < 1 || srcH < 1 {
		return maxW, maxH
	}
	ratio := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := int(math.Round(float64(srcW) * ratio))
	h := int(math.Round(float64(srcH) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
