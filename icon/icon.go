// Package icon resolves touch icon request paths into validated icon sizes.
//
// Paths have the form
//
//	apple-touch-icon[-<W>x<H>][-precomposed].png
//
// and must not carry a leading slash: stripping it is the caller's job. When
// the size is omitted the icon is 60x60. Only square icons of at most 500
// pixels a side are served.
package icon // import "github.com/nicolagi/touchicon/icon"

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	DefaultSize = 60
	MaxSize     = 500
)

const (
	prefix      = "apple-touch-icon"
	sizeGroup   = `(?:-(?P<width>\d+)x(?P<height>\d+))?`
	precomposed = `(?P<precomposed>-precomposed)?`
	suffix      = `\.png`
)

// Anchored at the start only, anything after ".png" is ignored.
var pathPattern = regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + sizeGroup + precomposed + suffix)

// Icon is a requested touch icon. Precomposed is carried along but does not
// change how the icon is rendered.
type Icon struct {
	Width       uint32
	Height      uint32
	Precomposed bool
}

// Parse extracts the icon size from a path with no leading slash.
func Parse(path string) (Icon, error) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return Icon{}, &ParseError{Kind: NoMatch, Path: path}
	}
	i := Icon{Width: DefaultSize, Height: DefaultSize}
	for n, name := range pathPattern.SubexpNames() {
		var err error
		switch name {
		case "width":
			if m[n] != "" {
				i.Width, err = parseDimension(m[n])
			}
		case "height":
			if m[n] != "" {
				i.Height, err = parseDimension(m[n])
			}
		case "precomposed":
			i.Precomposed = m[n] != ""
		}
		if err != nil {
			return Icon{}, &ParseError{Kind: Malformed, Path: path, Err: err}
		}
	}
	return i, nil
}

func parseDimension(digits string) (uint32, error) {
	v, err := strconv.ParseUint(digits, 10, 32)
	return uint32(v), err
}

// Validate reports the first of width, height and aspect that is not
// acceptable.
func (i Icon) Validate() error {
	if i.Width < 1 || i.Width > MaxSize {
		return ErrInvalidWidth
	}
	if i.Height < 1 || i.Height > MaxSize {
		return ErrInvalidHeight
	}
	if i.Width != i.Height {
		return ErrInvalidAspect
	}
	return nil
}

// Path returns the canonical path for the icon. Parsing it yields i again.
func (i Icon) Path() string {
	var p string
	if i.Precomposed {
		p = "-precomposed"
	}
	return fmt.Sprintf("%s-%dx%d%s.png", prefix, i.Width, i.Height, p)
}

func (i Icon) String() string {
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}
