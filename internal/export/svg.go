package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var ErrNoTracks = errors.New("export: nothing to draw")

// Track is one body's path in a common plane.
type Track struct {
	Name string
	X, Y []float64
}

var palette = []string{"#7aa2f7", "#e0af68", "#9ece6a", "#f7768e", "#bb9af7", "#7dcfff"}

// TracksToSVG draws every track into a size x size SVG. All tracks share one
// square scale so orbits keep their shape; the origin is drawn as a cross.
func TracksToSVG(w io.Writer, tracks []Track, size int) error {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, t := range tracks {
		for i := range t.X {
			minX, maxX = math.Min(minX, t.X[i]), math.Max(maxX, t.X[i])
			minY, maxY = math.Min(minY, t.Y[i]), math.Max(maxY, t.Y[i])
		}
	}
	if math.IsInf(minX, 0) {
		return ErrNoTracks
	}
	minX, maxX = math.Min(minX, 0), math.Max(maxX, 0)
	minY, maxY = math.Min(minY, 0), math.Max(maxY, 0)

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.1
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	px := func(x, y float64) (float64, float64) {
		return (x-cx)/span*float64(size) + float64(size)/2,
			float64(size)/2 - (y-cy)/span*float64(size)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	ox, oy := px(0, 0)
	fmt.Fprintf(&sb, `<path stroke="#444466" d="M%.1f,%.1fh10M%.1f,%.1fv10"/>
`, ox-5, oy, ox, oy-5)

	for i, t := range tracks {
		if len(t.X) == 0 {
			continue
		}
		color := palette[i%len(palette)]
		sb.WriteString(`<path fill="none" stroke="` + color + `" stroke-width="1.5" d="`)
		for j := range t.X {
			x, y := px(t.X[j], t.Y[j])
			cmd := "L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, x, y)
		}
		sb.WriteString("\"/>\n")

		x, y := px(t.X[len(t.X)-1], t.Y[len(t.Y)-1])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11">%s</text>
`, x, y, color, x+5, y-5, color, escape(t.Name))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
