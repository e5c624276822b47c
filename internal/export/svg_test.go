package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/hydrosim/internal/storage"
)

func TestTrajectoryToSVG(t *testing.T) {
	if got := TrajectoryToSVG([]Point{{0, 0}}, 100, 100, "#fff"); got != "" {
		t.Errorf("expected empty output for a single point, got %q", got)
	}

	svg := TrajectoryToSVG([]Point{{0, 0}, {1, 0}, {1, 1}}, 200, 100, "#abcdef")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete SVG document")
	}
	if !strings.Contains(svg, `stroke="#abcdef"`) {
		t.Error("expected the stroke colour")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments, got %d", strings.Count(svg, " L"))
	}
}

func TestFitEqualAspect(t *testing.T) {
	b := fit([]Point{{0, 0}, {10, 2}}, 400, 400)

	x0, y0 := b.project(Point{0, 0})
	x1, y1 := b.project(Point{1, 1})
	if math.Abs((x1-x0)-(y0-y1)) > 1e-9 {
		t.Errorf("expected equal scale, got dx=%v dy=%v", x1-x0, y0-y1)
	}

	for _, p := range []Point{{0, 0}, {10, 2}} {
		x, y := b.project(p)
		if x < 0 || x > 400 || y < 0 || y > 400 {
			t.Errorf("point %v projected outside the canvas: %v,%v", p, x, y)
		}
	}
}

func trackTable() *storage.Table {
	tbl := &storage.Table{Columns: []string{"x", "y", "z", "yaw"}}
	for i := 0; i <= 20; i++ {
		tt := float64(i) * 0.25
		tbl.Times = append(tbl.Times, tt)
		tbl.Rows = append(tbl.Rows, []float64{0.1 * tt, 0, tt, 0})
	}
	return tbl
}

func TestTrackToSVG(t *testing.T) {
	svg, err := TrackToSVG(trackTable(), DefaultTrackOptions())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(svg, `class="start"`) || !strings.Contains(svg, `class="end"`) {
		t.Error("expected start and end markers")
	}
	// 5 s of samples, one tick per second including t=0
	if n := strings.Count(svg, "<line "); n != 6 {
		t.Errorf("expected 6 heading ticks, got %d", n)
	}

	opts := DefaultTrackOptions()
	opts.HeadingEvery = 0
	svg, _ = TrackToSVG(trackTable(), opts)
	if strings.Contains(svg, "<line ") {
		t.Error("expected no heading ticks")
	}
}

func TestTrackToSVGErrors(t *testing.T) {
	if _, err := TrackToSVG(&storage.Table{Columns: []string{"y"}}, DefaultTrackOptions()); err == nil {
		t.Error("expected error without x/z columns")
	}
	short := &storage.Table{Columns: []string{"x", "z"}, Times: []float64{0}, Rows: [][]float64{{0, 0}}}
	if _, err := TrackToSVG(short, DefaultTrackOptions()); err == nil {
		t.Error("expected error for a single sample")
	}
}
