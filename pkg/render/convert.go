package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/matzehuels/pedigree/pkg/errors"
)

const rsvgConvert = "rsvg-convert"

// Converter converts SVG documents with rsvg-convert.
type Converter struct {
	path string
}

// LookupConverter finds rsvg-convert on PATH. It fails with
// CAPABILITY_UNAVAILABLE when the tool is not installed.
//
// Install with: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func LookupConverter() (*Converter, error) {
	path, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapabilityUnavailable, err, "paginated capture requires %s", rsvgConvert)
	}
	return &Converter{path: path}, nil
}

// ToPDF converts svg into a single-page PDF laid out per opts.
func (c *Converter) ToPDF(ctx context.Context, svg []byte, opts PageOptions) ([]byte, error) {
	opts = opts.withDefaults()
	w, h := opts.Dimensions()
	args := []string{
		"-f", "pdf",
		"--page-width", mm(w),
		"--page-height", mm(h),
		"--left", mm(opts.Margin),
		"--top", mm(opts.Margin),
	}
	if opts.Scale > 0 {
		args = append(args, "--zoom", strconv.FormatFloat(opts.Scale, 'f', 2, 64))
	} else {
		args = append(args,
			"--width", mm(w-2*opts.Margin),
			"--height", mm(h-2*opts.Margin),
			"--keep-aspect-ratio")
	}
	return c.run(ctx, svg, args...)
}

func (c *Converter) run(ctx context.Context, input []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", rsvgConvert, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "mm"
}
