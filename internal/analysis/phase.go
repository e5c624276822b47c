package analysis

import (
	"math"
	"strings"
)

// Portrait is one recorded column plotted against another, usually a
// position against its velocity. Settling shows up as a spiral into a
// point, a sustained roll or heave oscillation as a closed loop.
type Portrait struct {
	X, Y []float64
}

// NewPhasePortrait pairs columns xIdx and yIdx of the rows. Rows too short
// for either column are skipped. It returns nil when no row has both.
func NewPhasePortrait[S ~[]float64](rows []S, xIdx, yIdx int) *Portrait {
	if xIdx < 0 || yIdx < 0 {
		return nil
	}
	p := &Portrait{}
	for _, r := range rows {
		if xIdx >= len(r) || yIdx >= len(r) {
			continue
		}
		p.X = append(p.X, r[xIdx])
		p.Y = append(p.Y, r[yIdx])
	}
	if len(p.X) == 0 {
		return nil
	}
	return p
}

// Bounds returns the extent of the portrait.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := range p.X {
		minX, maxX = math.Min(minX, p.X[i]), math.Max(maxX, p.X[i])
		minY, maxY = math.Min(minY, p.Y[i]), math.Max(maxY, p.Y[i])
	}
	return minX, maxX, minY, maxY
}

// padded widens [lo, hi] by a tenth on each side; a flat range gets a
// unit span so a constant signal still plots.
func padded(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span/10, hi + span/10
}

// Render draws the portrait into a width x height block of text. Samples
// are dots, the first sample is 'o' and the last '@'. Zero axes are drawn
// where they fall inside the plot.
func (p *Portrait) Render(width, height int) string {
	if p == nil || len(p.X) == 0 || width < 2 || height < 2 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()
	minX, maxX = padded(minX, maxX)
	minY, maxY = padded(minY, maxY)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	cell := func(x, y float64) (int, int) {
		col := int((x - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((y-minY)/(maxY-minY)*float64(height-1))
		return row, col
	}

	if minX < 0 && maxX > 0 {
		_, col := cell(0, minY)
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if minY < 0 && maxY > 0 {
		row, _ := cell(minX, 0)
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}

	last := len(p.X) - 1
	for i := range p.X {
		row, col := cell(p.X[i], p.Y[i])
		switch i {
		case 0:
			grid[row][col] = 'o'
		case last:
			grid[row][col] = '@'
		default:
			if grid[row][col] != 'o' {
				grid[row][col] = '·'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
