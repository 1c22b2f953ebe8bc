package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/kinetic/internal/scene"
)

type Point struct{ X, Y float64 }

type Series struct {
	Name   string
	Color  string
	Points []Point
}

// Palette returns n evenly spaced hues of equal lightness.
func Palette(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		hue := 360 * float64(i) / float64(max(n, 1))
		colors[i] = colorful.Hcl(hue+30, 0.6, 0.72).Clamped().Hex()
	}
	return colors
}

// ResultSeries turns recorded cells into chart series with time in
// milliseconds on X. No cells means every cell.
func ResultSeries(res *scene.Result, cells ...string) []Series {
	if len(cells) == 0 {
		cells = res.Cells
	}
	colors := Palette(len(cells))

	out := make([]Series, 0, len(cells))
	for i, name := range cells {
		values := res.Series(name)
		if values == nil {
			continue
		}
		s := Series{Name: name, Color: colors[i], Points: make([]Point, len(values))}
		for j, v := range values {
			s.Points[j] = Point{X: float64(res.Times[j]) / 1e6, Y: v}
		}
		out = append(out, s)
	}
	return out
}

// Chart draws every series on shared axes with a legend.
func Chart(series []Series, width, height int) string {
	var pts int
	for _, s := range series {
		pts += len(s.Points)
	}
	if pts < 2 {
		return ""
	}

	// Find bounds
	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range series {
		for _, p := range s.Points {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for j, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, s.Color, html.EscapeString(s.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
