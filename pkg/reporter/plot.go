package reporter

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var barColors = append([]color.Color{
	color.RGBA{R: 122, G: 195, B: 106, A: 255},
	color.RGBA{R: 241, G: 90, B: 96, A: 255},
	color.RGBA{R: 90, G: 155, B: 212, A: 255},
	color.RGBA{R: 250, G: 167, B: 91, A: 255},
	color.RGBA{R: 158, G: 103, B: 171, A: 255},
	color.RGBA{R: 206, G: 112, B: 88, A: 255},
	color.RGBA{R: 215, G: 127, B: 180, A: 255},
}, plotutil.DarkColors...)

func plotThroughput(file string, results []*dnsbench.Result) {
	if len(results) == 0 {
		// nothing to plot
		return
	}

	p := plot.New()
	p.Title.Text = "Throughput"
	p.NominalX("Benchmarks")

	width := vg.Points(20)
	off := -vg.Length(len(results)/2) * width
	for i, r := range results {
		bar, err := plotter.NewBarChart(plotter.Values{r.Hz}, width)
		if err != nil {
			panic(err)
		}
		p.Legend.Add(r.Name, bar)
		bar.Color = barColors[i%len(barColors)]
		bar.Offset = off
		p.Add(bar)
		off += width
	}

	p.Y.Label.Text = "Operations per second"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotBoxPlotLatency(file string, results []*dnsbench.Result) {
	var names []string
	var boxes []plotter.Values
	for _, r := range results {
		var values plotter.Values
		for _, d := range r.Durations() {
			values = append(values, milliseconds(d))
		}
		if len(values) == 0 {
			continue
		}
		names = append(names, r.Name)
		boxes = append(boxes, values)
	}
	if len(boxes) == 0 {
		// nothing to plot
		return
	}

	p := plot.New()
	p.Title.Text = "Latencies distribution"
	p.Y.Label.Text = "Latencies (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.1f"}
	p.NominalX(names...)

	for i, values := range boxes {
		boxplot, err := plotter.NewBoxPlot(vg.Length(40), float64(i), values)
		if err != nil {
			panic(err)
		}
		boxplot.FillColor = color.RGBA{R: 127, G: 188, B: 165, A: 255}
		p.Add(boxplot)
	}

	if err := p.Save(vg.Length(max(3, len(boxes)))*2*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotHistogramLatency(file string, times []BenchmarkSample) {
	if len(times) == 0 {
		// nothing to plot
		return
	}
	var values plotter.Values
	for _, v := range times {
		values = append(values, milliseconds(v.Duration))
	}
	p := plot.New()
	p.Title.Text = "Latencies distribution"

	hist, err := plotter.NewHist(values, numBins(values))
	if err != nil {
		panic(err)
	}
	p.X.Label.Text = "Latencies (ms)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.1f"}
	p.Y.Label.Text = "Number of samples"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	hist.FillColor = color.RGBA{R: 175, G: 238, B: 238, A: 255}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

// numBins calculates number of bins for histogram.
func numBins(values plotter.Values) int {
	n := float64(len(values))

	// small dataset
	if n < 100 {
		sqrt := math.Sqrt(n)
		return int(math.Max(1, math.Min(15, sqrt)))
	}

	// medium dataset - use Rice's rule
	if n < 1000 {
		rice := 2 * math.Cbrt(n)
		return int(math.Min(30, rice))
	}

	// large dataset - use Doane's rule
	skewness := stat.Skew(values, nil)
	sigmaG := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
	doane := 1 + math.Log2(n) + math.Log2(1+math.Abs(skewness)/sigmaG)
	return int(math.Min(50, doane))
}

type latencyMeasurements struct {
	p99 float64
	p95 float64
	p90 float64
	p50 float64
}

func plotLineLatencies(file string, suiteStart time.Time, times []BenchmarkSample) {
	if len(times) == 0 {
		// nothing to plot
		return
	}

	measurements := make(map[int64]latencyMeasurements)
	timings := make([]float64, 0)
	last := times[0].Start.Unix() - suiteStart.Unix()

	for _, v := range times {
		offset := v.Start.Unix() - suiteStart.Unix()
		if offset != last {
			measurements[last] = collectMeasurements(timings)
			timings = timings[:0]
			last = offset
		}
		timings = append(timings, milliseconds(v.Duration))
	}
	measurements[last] = collectMeasurements(timings)

	var p99values, p95values, p90values, p50values plotter.XYs
	for k, v := range measurements {
		p99values = append(p99values, plotter.XY{X: float64(k), Y: v.p99})
		p95values = append(p95values, plotter.XY{X: float64(k), Y: v.p95})
		p90values = append(p90values, plotter.XY{X: float64(k), Y: v.p90})
		p50values = append(p50values, plotter.XY{X: float64(k), Y: v.p50})
	}
	for _, xys := range []plotter.XYs{p99values, p95values, p90values, p50values} {
		sortByX(xys)
	}

	p := plot.New()
	p.Title.Text = "Sample latencies"
	p.X.Label.Text = "Time of suite (s)"
	p.Y.Label.Text = "Latency (ms)"

	plotLine(p, p99values, plotutil.DarkColors[0], plotutil.SoftColors[0], "p99")
	plotLine(p, p95values, plotutil.DarkColors[1], plotutil.SoftColors[1], "p95")
	plotLine(p, p90values, plotutil.DarkColors[2], plotutil.SoftColors[2], "p90")
	plotLine(p, p50values, plotutil.DarkColors[3], plotutil.SoftColors[3], "p50")

	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func collectMeasurements(timings []float64) latencyMeasurements {
	percentile := func(p float64) float64 {
		v, err := stats.Percentile(timings, p)
		if err != nil {
			panic(err)
		}
		return v
	}
	return latencyMeasurements{
		p99: percentile(99),
		p95: percentile(95),
		p90: percentile(90),
		p50: percentile(50),
	}
}

func plotErrorRate(file string, suiteStart time.Time, times []BenchmarkSample) {
	if len(times) == 0 {
		// nothing to plot
		return
	}
	m := make(map[int64]int64)
	for _, v := range times {
		m[v.Start.Unix()-suiteStart.Unix()]++
	}

	var values plotter.XYs
	for k, v := range m {
		values = append(values, plotter.XY{X: float64(k), Y: float64(v)})
	}
	sortByX(values)

	p := plot.New()
	p.Title.Text = "Error rate over time"
	p.X.Label.Text = "Time of suite (s)"
	p.X.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Y.Label.Text = "Number of failed samples (per sec)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}

	l, err := plotter.NewLine(values)
	if err != nil {
		panic(err)
	}
	l.Width = vg.Points(0.5)
	p.Add(l)

	scatter, err := plotter.NewScatter(values)
	if err != nil {
		panic(err)
	}
	scatter.Color = color.RGBA{R: 238, G: 46, B: 47, A: 255}
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotLine(p *plot.Plot, values plotter.XYs, color color.Color, fill color.Color, name string) {
	l, err := plotter.NewLine(values)
	if err != nil {
		panic(err)
	}
	l.Color = color
	l.FillColor = fill
	p.Add(l)
	p.Legend.Add(name, l)
	scatter, err := plotter.NewScatter(values)
	if err != nil {
		panic(err)
	}
	scatter.Color = color
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
}

func sortByX(xys plotter.XYs) {
	sort.SliceStable(xys, func(i, j int) bool {
		return xys[i].X < xys[j].X
	})
}
