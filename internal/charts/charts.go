// Package charts renders report data as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"pennywise/internal/core"
)

// minShare hides slivers below this percentage of the total.
const minShare = 1.0

// CategoryPie draws the expense categories as a pie chart. It returns nil
// when there is nothing to draw.
func CategoryPie(title string, categories []core.CategoryTotal) ([]byte, error) {
	var total float64
	for _, c := range categories {
		total += c.Amount.Float()
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(categories))
	for _, c := range categories {
		amount := c.Amount.Float()
		share := amount / total * 100
		if share < minShare {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", c.Name, c.Amount, share),
			Value: amount,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
