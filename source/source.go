// Package source loads the image that icons are resized from.
//
// There are three kinds of source: an image embedded in the binary, an image
// fetched from a URL, and an image read from a blob store under the key that
// an asset manifest assigns to its name.
package source // import "github.com/nicolagi/touchicon/source"

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrFetch wraps all errors returned by Fetch.
var ErrFetch = errors.New("could not fetch source image")

// Image is an encoded image and its MIME type.
type Image struct {
	Data   []byte
	Format string
}

type Source interface {
	Fetch(ctx context.Context) (Image, error)
}

type Kind string

const (
	KindEmbedded  Kind = "embedded"
	KindURL       Kind = "url"
	KindBlobStore Kind = "blobstore"
)

var formatsByExtension = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// FormatFromName guesses the MIME type from a file name's extension.
func FormatFromName(name string) (string, bool) {
	format, ok := formatsByExtension[strings.ToLower(path.Ext(name))]
	return format, ok
}
