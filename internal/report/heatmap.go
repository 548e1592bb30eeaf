package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mahdiidarabi/hb-lpn/pkg/hblpn"
)

var labels = []string{"0", "1"}

// NewConfusionHeatmap builds a 2x2 heatmap with true labels on the y axis and
// predicted labels on the x axis.
func NewConfusionHeatmap(cm hblpn.ConfusionMatrix, title string) *charts.HeatMap {
	m := cm.Matrix()
	peak := 0
	items := make([]opts.HeatMapData, 0, 4)
	for truth := 0; truth < 2; truth++ {
		for pred := 0; pred < 2; pred++ {
			items = append(items, opts.HeatMapData{Value: [3]interface{}{pred, truth, m[truth][pred]}})
			peak = max(peak, m[truth][pred])
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("accuracy %.4f", cm.Accuracy())}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "700px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Predicted label", Data: labels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "True label", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(peak),
			InRange:    &opts.VisualMapInRange{Color: []string{"#000004", "#b73779", "#fcfdbf"}},
		}),
	)
	hm.SetXAxis(labels).
		AddSeries("count", items, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}

// WriteConfusionHeatmap renders the heatmap page to w.
func WriteConfusionHeatmap(w io.Writer, cm hblpn.ConfusionMatrix, title string) error {
	if err := NewConfusionHeatmap(cm, title).Render(w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}
