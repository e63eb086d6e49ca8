package engine

import (
	"math"
	"math/big"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// CHART BUILDER — render-ready line chart for a graph request
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// buildChart samples the expression over [lo, hi]. Points where evaluation
// fails (a pole, sqrt of a negative) are skipped, not zeroed. Quadratics
// additionally get vertex and real-root marker series.
func buildChart(cfg *config, target expr.Node, name string, lo, hi float64) (*ChartConfig, error) {
	if name == "" {
		name = "x"
	}
	samples := cfg.GraphSamples
	step := (hi - lo) / float64(samples-1)

	points := make([]ChartPoint, 0, samples)
	env := map[string]float64{}
	for i := 0; i < samples; i++ {
		x := lo + step*float64(i)
		env[name] = x
		y, err := expr.EvalAt(target, env)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		points = append(points, ChartPoint{Label: formatFloat(x), X: x, Value: y})
	}
	if len(points) == 0 {
		return nil, &UnsupportedFormError{Form: target.String(), Detail: "no finite values over the sampling range"}
	}

	series := []ChartSeries{{
		Name: "y = " + target.String(),
		Data: points,
	}}
	series = append(series, quadraticMarkers(target, name, lo, hi)...)

	colors := make([]string, len(series))
	for i := range series {
		colors[i] = defaultColors[i%len(defaultColors)]
		series[i].Color = colors[i]
	}

	return &ChartConfig{
		ChartType:  "line",
		Title:      "y = " + target.String(),
		XAxis:      name,
		YAxis:      "y",
		Series:     series,
		Colors:     colors,
		ShowLegend: len(series) > 1,
		ShowGrid:   true,
	}, nil
}

// quadraticMarkers adds vertex and real-root series for degree-2 targets.
func quadraticMarkers(target expr.Node, name string, lo, hi float64) []ChartSeries {
	coeffs, err := expr.Coeffs(target, name)
	if err != nil {
		return nil
	}
	p := newPolynomial(coeffs, name)
	if p.degree() != 2 {
		return nil
	}
	af, _ := p.at(2).Float64()
	bf, _ := p.at(1).Float64()

	var out []ChartSeries

	vx := -bf / (2 * af)
	if vx >= lo && vx <= hi {
		vy := horner(p.floats(), vx)
		out = append(out, ChartSeries{
			Name: "vertex",
			Data: []ChartPoint{{Label: formatFloat(vx), X: vx, Value: vy}},
		})
	}

	disc := new(big.Rat).Mul(p.at(1), p.at(1))
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(p.at(2), p.at(0))))
	if disc.Sign() >= 0 {
		df, _ := disc.Float64()
		sd := math.Sqrt(df)
		var roots []ChartPoint
		for _, rx := range []float64{(-bf + sd) / (2 * af), (-bf - sd) / (2 * af)} {
			if rx >= lo && rx <= hi {
				roots = append(roots, ChartPoint{Label: formatFloat(rx), X: rx, Value: 0})
			}
		}
		if len(roots) > 0 {
			out = append(out, ChartSeries{Name: "roots", Data: roots})
		}
	}
	return out
}
