package render

import (
	"strings"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat normalizes an export format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatPNG, FormatPDF, FormatJSON:
		return f, nil
	case "image":
		return FormatPNG, nil
	case "document":
		return FormatPDF, nil
	case "data":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q (use png, pdf or json)", s)
	}
}

// Orientation selects how generations are laid out.
type Orientation string

const (
	// Horizontal places the root on the left and ancestors to the right.
	Horizontal Orientation = "horizontal"
	// Vertical places the root at the bottom and ancestors above.
	Vertical Orientation = "vertical"
)

// ParseOrientation accepts horizontal/vertical and their first letters.
// An empty string yields Horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid orientation %q (use horizontal or vertical)", s)
	}
}

// RasterOptions configures raster capture.
type RasterOptions struct {
	// Scale multiplies the base resolution of 96 DPI. Defaults to 2.
	Scale float64
}

// DPI returns the effective dots per inch.
func (o RasterOptions) DPI() float64 {
	if o.Scale <= 0 {
		return 2 * 96
	}
	return o.Scale * 96
}

// PageSize is a paper size in millimetres, portrait.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	PageA4     = PageSize{Name: "a4", Width: 210, Height: 297}
	PageA3     = PageSize{Name: "a3", Width: 297, Height: 420}
	PageLetter = PageSize{Name: "letter", Width: 215.9, Height: 279.4}
)

// ParsePageSize looks up a page size by name. An empty name yields A4.
func ParsePageSize(s string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a4":
		return PageA4, nil
	case "a3":
		return PageA3, nil
	case "letter":
		return PageLetter, nil
	default:
		return PageSize{}, errors.New(errors.ErrCodeInvalidInput, "unknown page size %q (use a4, a3 or letter)", s)
	}
}

// PageOptions configures paginated capture.
type PageOptions struct {
	Size      PageSize
	Landscape bool
	// Margin is applied on every side, in millimetres. Defaults to 10.
	Margin float64
	// Scale zooms the drawing. Zero fits the drawing to the printable area.
	Scale float64
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Size.Width == 0 || o.Size.Height == 0 {
		o.Size = PageA4
	}
	if o.Margin <= 0 {
		o.Margin = 10
	}
	return o
}

// Dimensions returns the page width and height in millimetres after
// applying orientation.
func (o PageOptions) Dimensions() (w, h float64) {
	o = o.withDefaults()
	w, h = o.Size.Width, o.Size.Height
	if o.Landscape {
		w, h = h, w
	}
	return w, h
}
