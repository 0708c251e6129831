// yearly.go
// Generates a GitHub-like yearly purchase heatmap as an SVG string in Go.
package heatmap

import (
	"fmt"
	"html"
	"strings"
)

// GenerateYearlyHeatmapSVG returns an SVG string representing the yearly heatmap.
// data should be sorted in ascending order by date.
func GenerateYearlyHeatmapSVG(data []Data, opts *Options) string {
	// default options
	if opts == nil {
		opts = DefaultOptions()
	}

	if len(data) == 0 || len(opts.Colors) < 2 {
		return ""
	}

	// determine date range: explicit options win over the data bounds
	startDate := data[0].Date
	endDate := data[len(data)-1].Date
	if !opts.From.IsZero() {
		startDate = opts.From
	}
	if !opts.To.IsZero() {
		endDate = opts.To
	}
	endKey := endDate.Format("2006-01-02")

	// map date string to value
	valueMap := make(map[string]int, len(data))
	for _, d := range data {
		key := d.Date.Format("2006-01-02")
		valueMap[key] += d.Value
	}

	// align first column to Sunday
	firstSunday := startDate.AddDate(0, 0, -int(startDate.Weekday()))

	// calculate required number of weeks
	dayDiff := endDate.Sub(firstSunday).Hours() / 24
	weeks := int(dayDiff/7) + 1

	title := buildTitle(opts)

	// compute dimensions
	titleHeight := 0
	if title != "" {
		titleHeight = opts.FontSize + 8 // title text + padding
	}
	width := weeks*(opts.CellSize+opts.CellPadding) + opts.CellPadding
	height := 7*(opts.CellSize+opts.CellPadding) + opts.CellPadding + opts.FontSize + 4 + titleHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height))
	sb.WriteString(fmt.Sprintf(`  <style>.label{font-family:%s;font-size:%dpx;fill:#666}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="title">%s</text>`+"\n",
			opts.CellPadding, opts.FontSize, html.EscapeString(title)))
	}

	// month labels
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	lastMonth := -1
	monthLabelY := opts.FontSize + titleHeight
	for w := range weeks {
		x := opts.CellPadding + w*(opts.CellSize+opts.CellPadding)
		current := firstSunday.AddDate(0, 0, w*7)
		if current.Day() <= 7 && int(current.Month())-1 != lastMonth {
			sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="label">%s</text>`+"\n",
				x, monthLabelY, months[current.Month()-1]))
			lastMonth = int(current.Month()) - 1
		}
	}

	// find the maximum value for auto-scaling
	supValue := 5
	for _, v := range valueMap {
		if v+1 > supValue {
			supValue = v + 1
		}
	}

	levels := len(opts.Colors)
	for w := range weeks {
		for i := range 7 {
			current := firstSunday.AddDate(0, 0, w*7+i)
			key := current.Format("2006-01-02")
			if current.Before(startDate) && key != startDate.Format("2006-01-02") {
				continue
			}
			if key > endKey {
				continue
			}
			value, exists := valueMap[key]
			if !exists {
				continue
			}

			x := opts.CellPadding + w*(opts.CellSize+opts.CellPadding)
			y := opts.CellPadding + opts.FontSize + 4 + titleHeight + i*(opts.CellSize+opts.CellPadding)

			// 各セルに矩形と、その中にtitle要素（ツールチップ）を追加
			sb.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" fill="%s" data-date="%s" data-count="%d">`+"\n",
				x, y, opts.CellSize, opts.CellSize, opts.Colors[colorLevel(value, supValue, levels)], key, value))
			displayDate := current.Format("2006年01月02日")
			sb.WriteString(fmt.Sprintf(`    <title>%s: %d</title>`+"\n", displayDate, value))
			sb.WriteString(`  </rect>` + "\n")
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// colorLevel maps a value to a color index. 0 always uses level 0.
func colorLevel(value, supValue, levels int) int {
	if value <= 0 {
		return 0
	}
	if levels <= 2 {
		return levels - 1
	}
	// 1以上の値を1からlevels-1の範囲に分散
	level := ((value-1)*(levels-2))/(supValue-1) + 1
	if level >= levels {
		level = levels - 1
	}
	if level < 1 {
		level = 1
	}
	return level
}

func buildTitle(opts *Options) string {
	title := opts.Title
	if len(opts.Filters) > 0 {
		filters := strings.Join(opts.Filters, ", ")
		if title != "" {
			title += " (" + filters + ")"
		} else {
			title = filters
		}
	}
	return title
}
