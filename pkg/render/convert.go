package render

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/matzehuels/hyperkey/pkg/errors"
)

// ToPDF turns a rendered layer diagram into a PDF for `hyperkey graph -f pdf`.
// The rsvg-convert binary from librsvg must be on PATH.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG rasterizes a layer diagram for `hyperkey graph -f png`. The diagram is
// zoomed by scale; the graph command passes --scale, 2 by default.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// rsvgConvert pipes the diagram through rsvg-convert and returns its stdout.
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s diagrams need rsvg-convert on PATH (brew install librsvg)", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
