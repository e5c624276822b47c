// Package export renders recorded runs as standalone SVG images.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/hydrosim/internal/storage"
)

type Point struct{ X, Y float64 }

// bounds is a padded, equal-aspect view onto a set of points.
type bounds struct {
	minX, minY, scale float64
	width, height     int
}

func fit(points []Point, width, height int) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := math.Max(maxX-minX, 1)
	rangeY := math.Max(maxY-minY, 1)
	// 10% padding each side
	scale := math.Min(float64(width)/(rangeX*1.2), float64(height)/(rangeY*1.2))

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return bounds{
		minX:   cx - float64(width)/scale/2,
		minY:   cy - float64(height)/scale/2,
		scale:  scale,
		width:  width,
		height: height,
	}
}

// project maps world coordinates to SVG pixels, y pointing up.
func (b bounds) project(p Point) (float64, float64) {
	return (p.X - b.minX) * b.scale, float64(b.height) - (p.Y-b.minY)*b.scale
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, b bounds, points []Point, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.project(p)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
`)
}

// TrajectoryToSVG draws points as one polyline at equal scale on both axes.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, fit(points, width, height), points, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

type TrackOptions struct {
	Width, Height int
	Stroke        string
	// HeadingEvery draws a heading tick every this many seconds; 0 disables.
	HeadingEvery float64
}

func DefaultTrackOptions() TrackOptions {
	return TrackOptions{Width: 800, Height: 600, Stroke: "#00ff88", HeadingEvery: 1}
}

// TrackToSVG draws the top-down path of a run on the x/z plane, with start
// and end markers and heading ticks taken from the yaw column.
func TrackToSVG(t *storage.Table, opts TrackOptions) (string, error) {
	xi, zi, yawi := t.Column("x"), t.Column("z"), t.Column("yaw")
	if xi < 0 || zi < 0 {
		return "", fmt.Errorf("run has no x/z columns")
	}
	if len(t.Rows) < 2 {
		return "", fmt.Errorf("run has %d samples, need at least 2", len(t.Rows))
	}

	points := make([]Point, len(t.Rows))
	for i, row := range t.Rows {
		points[i] = Point{X: row[xi], Y: row[zi]}
	}

	b := fit(points, opts.Width, opts.Height)
	var sb strings.Builder
	header(&sb, opts.Width, opts.Height)
	path(&sb, b, points, opts.Stroke)

	if yawi >= 0 && opts.HeadingEvery > 0 {
		sb.WriteString(`<g stroke="#ffaa00" stroke-width="1">
`)
		next := t.Times[0]
		for i, row := range t.Rows {
			if t.Times[i]+1e-9 < next {
				continue
			}
			next += opts.HeadingEvery
			// yaw is measured from +z towards +x
			yaw := row[yawi]
			x0, y0 := b.project(points[i])
			x1, y1 := x0+10*math.Sin(yaw), y0-10*math.Cos(yaw)
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x0, y0, x1, y1)
		}
		sb.WriteString("</g>\n")
	}

	sx, sy := b.project(points[0])
	ex, ey := b.project(points[len(points)-1])
	fmt.Fprintf(&sb, `<circle class="start" cx="%.1f" cy="%.1f" r="4" fill="#4488ff"/>
<circle class="end" cx="%.1f" cy="%.1f" r="4" fill="#ff4444"/>
`, sx, sy, ex, ey)

	sb.WriteString("</svg>")
	return sb.String(), nil
}
