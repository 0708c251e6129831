package heatmap

import (
	"time"
)

// Data holds the date and value for each day.
type Data struct {
	Date  time.Time
	Value int
}

// Options configures rendering parameters.
type Options struct {
	CellSize    int       // size of each day cell (px)
	CellPadding int       // padding between cells (px)
	Colors      []string  // array of N CSS colors for levels 0..N-1
	FontSize    int       // font size for month labels (px)
	FontFamily  string    // font family for labels
	Title       string    // title text, omitted when empty
	Filters     []string  // filters appended to the title
	From        time.Time // first day to render
	To          time.Time // last day to render
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() *Options {
	return &Options{
		CellSize:    12,
		CellPadding: 2,
		FontSize:    10,
		FontFamily:  "sans-serif",
		Colors:      []string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"},
	}
}

// CountByDay buckets dates into one Data entry per local day in [from, to].
// Days without any date get a zero value.
func CountByDay(dates []time.Time, from, to time.Time) []Data {
	counts := make(map[string]int, len(dates))
	for _, d := range dates {
		counts[d.In(from.Location()).Format("2006-01-02")]++
	}

	var data []Data
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for current := start; !current.After(to); current = current.AddDate(0, 0, 1) {
		data = append(data, Data{
			Date:  current,
			Value: counts[current.Format("2006-01-02")],
		})
	}
	return data
}
