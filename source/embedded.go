package source

import (
	"context"
	_ "embed"
)

//go:embed assets/icon.png
var defaultIcon []byte

// Static serves the same bytes every time.
type Static struct {
	image Image
}

// NewEmbedded returns the source bundled with the binary.
func NewEmbedded() *Static {
	return NewStatic(defaultIcon, "image/png")
}

func NewStatic(data []byte, format string) *Static {
	return &Static{image: Image{Data: data, Format: format}}
}

func (s *Static) Fetch(context.Context) (Image, error) {
	return s.image, nil
}
