package views

import (
	"fmt"
	"strconv"
	"strings"

	"instatistics/internal/domain"
)

const (
	chartWidth  = 720
	chartHeight = 260
	chartPadX   = 40
	chartPadTop = 24
	chartPadBot = 40
	barColor    = "#0095f6"
	lineColor   = "#c13584"
	axisColor   = "#8e8e8e"
)

var (
	chartViewBox = fmt.Sprintf("0 0 %d %d", chartWidth, chartHeight)
	axisY        = strconv.Itoa(chartHeight - chartPadBot)
	axisLabelY   = strconv.Itoa(chartHeight - chartPadBot + 16)
)

// series is one labeled value on a chart axis.
type series struct {
	labels []string
	values []int
}

// bar is the geometry of one bar, formatted for SVG attributes.
type bar struct {
	x, y, width, height string
	center, valueY      string
	label               string
	value               int
}

// point is the geometry of one line chart marker.
type point struct {
	cx, cy    string
	label     string
	value     int
	showLabel bool
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func (s series) max() int {
	m := 0
	for _, v := range s.values {
		m = max(m, v)
	}
	return m
}

func (s series) y(v int) float64 {
	m := s.max()
	if m == 0 {
		return chartHeight - chartPadBot
	}
	plot := float64(chartHeight - chartPadTop - chartPadBot)
	return chartHeight - chartPadBot - plot*float64(v)/float64(m)
}

func (s series) bars() []bar {
	n := len(s.values)
	if n == 0 {
		return nil
	}

	slot := float64(chartWidth-2*chartPadX) / float64(n)
	barW := slot * 0.7
	base := float64(chartHeight - chartPadBot)

	bars := make([]bar, n)
	for i, v := range s.values {
		x := float64(chartPadX) + slot*float64(i) + (slot-barW)/2
		y := s.y(v)
		bars[i] = bar{
			x:      coord(x),
			y:      coord(y),
			width:  coord(barW),
			height: coord(base - y),
			center: coord(x + barW/2),
			valueY: coord(y - 4),
			label:  s.labels[i],
			value:  v,
		}
	}
	return bars
}

func (s series) points() []point {
	n := len(s.values)
	step := 0.0
	if n > 1 {
		step = float64(chartWidth-2*chartPadX) / float64(n-1)
	}
	// Thin out axis labels on long ranges.
	every := max(1, n/12)

	points := make([]point, n)
	for i, v := range s.values {
		x := float64(chartWidth / 2)
		if n > 1 {
			x = float64(chartPadX) + step*float64(i)
		}
		points[i] = point{
			cx:        coord(x),
			cy:        coord(s.y(v)),
			label:     s.labels[i],
			value:     v,
			showLabel: i%every == 0,
		}
	}
	return points
}

func (s series) polyline() string {
	pts := s.points()
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = p.cx + "," + p.cy
	}
	return strings.Join(coords, " ")
}

func hourlySeries(hours []domain.HourCount) series {
	var s series
	for _, h := range hours {
		s.labels = append(s.labels, fmt.Sprintf("%02d", h.Hour))
		s.values = append(s.values, h.Count)
	}
	return s
}

func weekdaySeries(days [7]domain.WeekdayCount) series {
	var s series
	for _, d := range days {
		s.labels = append(s.labels, d.Weekday[:3])
		s.values = append(s.values, d.Count)
	}
	return s
}

func monthlySeries(months []domain.MonthCount) series {
	var s series
	for _, m := range months {
		s.labels = append(s.labels, m.Month.String())
		s.values = append(s.values, m.Count)
	}
	return s
}
