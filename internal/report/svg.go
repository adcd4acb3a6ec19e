package report

import (
	"fmt"
	"html"
	"io"
	"strings"
	"text/template"

	"github.com/tracefetch/tracefetch/internal/analysis"
)

const (
	chartWidth   = 800
	chartHeight  = 480
	marginLeft   = 76
	marginRight  = 24
	marginTop    = 40
	marginBottom = 56
	tickCount    = 5
)

var palette = []string{"#4878cf", "#ee854a", "#6acc65", "#d65f5f", "#956cb4", "#8c613c"}

var chartTemplate = template.Must(template.New("chart").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <rect width="{{.Width}}" height="{{.Height}}" fill="#ffffff"/>
  <text x="{{.TitleX}}" y="24" font-family="sans-serif" font-size="16" text-anchor="middle">{{.Title}}</text>
{{- range .YTicks}}
  <line x1="{{$.PlotX}}" y1="{{.Y}}" x2="{{$.PlotRight}}" y2="{{.Y}}" stroke="#dddddd" stroke-dasharray="4 3"/>
  <text x="{{$.YLabelX}}" y="{{.LabelY}}" font-family="sans-serif" font-size="11" text-anchor="end">{{.Label}}</text>
{{- end}}
{{- range .XTicks}}
  <line x1="{{.X}}" y1="{{$.PlotY}}" x2="{{.X}}" y2="{{$.PlotBottom}}" stroke="#dddddd" stroke-dasharray="4 3"/>
  <text x="{{.X}}" y="{{$.XLabelY}}" font-family="sans-serif" font-size="11" text-anchor="middle">{{.Label}}</text>
{{- end}}
  <line x1="{{.PlotX}}" y1="{{.PlotBottom}}" x2="{{.PlotRight}}" y2="{{.PlotBottom}}" stroke="#333333"/>
  <line x1="{{.PlotX}}" y1="{{.PlotY}}" x2="{{.PlotX}}" y2="{{.PlotBottom}}" stroke="#333333"/>
  <text x="{{.TitleX}}" y="{{.AxisLabelY}}" font-family="sans-serif" font-size="12" text-anchor="middle">Time since first timestamp (s)</text>
  <text x="18" y="{{.MidY}}" font-family="sans-serif" font-size="12" text-anchor="middle" transform="rotate(-90 18 {{.MidY}})">Cumulative bytes received</text>
{{- range .Series}}
  <polyline points="{{.Points}}" fill="none" stroke="{{.Color}}" stroke-width="1.5" opacity="0.75"/>
{{- end}}
{{- range .Series}}
  <line x1="{{.LegendX}}" y1="{{.LegendY}}" x2="{{.LegendLineX}}" y2="{{.LegendY}}" stroke="{{.Color}}" stroke-width="2"/>
  <text x="{{.LegendTextX}}" y="{{.LegendTextY}}" font-family="sans-serif" font-size="11">{{.Name}}</text>
{{- end}}
</svg>
`))

type chartTick struct {
	X      int
	Y      int
	LabelY int
	Label  string
}

type chartSeries struct {
	Name        string
	Color       string
	Points      string
	LegendX     int
	LegendLineX int
	LegendTextX int
	LegendY     int
	LegendTextY int
}

type chartData struct {
	Width      int
	Height     int
	Title      string
	TitleX     int
	PlotX      int
	PlotY      int
	PlotRight  int
	PlotBottom int
	MidY       int
	YLabelX    int
	XLabelY    int
	AxisLabelY int
	XTicks     []chartTick
	YTicks     []chartTick
	Series     []chartSeries
}

// WriteSVG renders a step chart overlaying the cumulative-bytes series,
// one colored line per log.
func WriteSVG(w io.Writer, series []*analysis.Series, title string) error {
	var maxX float64
	var maxY int64
	for _, s := range series {
		st := s.Stats()
		if st.Duration.Seconds() > maxX {
			maxX = st.Duration.Seconds()
		}
		if st.TotalBytes > maxY {
			maxY = st.TotalBytes
		}
	}
	if maxX <= 0 {
		maxX = 1
	}
	if maxY <= 0 {
		maxY = 1
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	xPix := func(x float64) float64 { return marginLeft + x/maxX*float64(plotW) }
	yPix := func(y int64) float64 {
		return float64(marginTop+plotH) - float64(y)/float64(maxY)*float64(plotH)
	}

	data := chartData{
		Width:      chartWidth,
		Height:     chartHeight,
		Title:      html.EscapeString(title),
		TitleX:     marginLeft + plotW/2,
		PlotX:      marginLeft,
		PlotY:      marginTop,
		PlotRight:  marginLeft + plotW,
		PlotBottom: marginTop + plotH,
		MidY:       marginTop + plotH/2,
		YLabelX:    marginLeft - 8,
		XLabelY:    marginTop + plotH + 18,
		AxisLabelY: chartHeight - 14,
	}

	for i := 0; i <= tickCount; i++ {
		xv := maxX * float64(i) / tickCount
		yv := maxY * int64(i) / tickCount
		data.XTicks = append(data.XTicks, chartTick{
			X:     int(xPix(xv)),
			Label: fmt.Sprintf("%.2f", xv),
		})
		y := int(yPix(yv))
		data.YTicks = append(data.YTicks, chartTick{
			Y:      y,
			LabelY: y + 4,
			Label:  formatBytes(yv),
		})
	}

	for i, s := range series {
		data.Series = append(data.Series, chartSeries{
			Name:        html.EscapeString(s.Name),
			Color:       palette[i%len(palette)],
			Points:      stepPoints(s.Samples, xPix, yPix),
			LegendX:     marginLeft + 12,
			LegendLineX: marginLeft + 34,
			LegendTextX: marginLeft + 40,
			LegendY:     marginTop + 14 + i*16,
			LegendTextY: marginTop + 18 + i*16,
		})
	}

	if err := chartTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// stepPoints builds a post-step polyline: the byte count holds until
// the next receive event.
func stepPoints(samples []analysis.Sample, xPix func(float64) float64, yPix func(int64) float64) string {
	var b strings.Builder
	prev := int64(0)
	fmt.Fprintf(&b, "%.1f,%.1f", xPix(0), yPix(0))
	for _, s := range samples {
		x := xPix(s.Elapsed.Seconds())
		fmt.Fprintf(&b, " %.1f,%.1f %.1f,%.1f", x, yPix(prev), x, yPix(s.Bytes))
		prev = s.Bytes
	}
	return b.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
