// Package metrics scores forecasts against actuals, per entity.
package metrics

import (
	"fmt"
	"math"

	"github.com/panelcast/panelcast/internal/panel"
)

// Metric identifies a forecast accuracy measure.
type Metric int

const (
	SMAPE Metric = iota
	MAPE
	MAE
	RMSE
	RMSSE
)

var metricNames = map[Metric]string{
	SMAPE: "smape",
	MAPE:  "mape",
	MAE:   "mae",
	RMSE:  "rmse",
	RMSSE: "rmsse",
}

func (m Metric) String() string { return metricNames[m] }

// ParseMetric parses a metric name like "smape".
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// CalculateSMAPE returns the symmetric mean absolute percentage error in
// percent. Points where both values are zero are skipped.
func CalculateSMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		denom := math.Abs(actual[i]) + math.Abs(predicted[i])
		if denom == 0 {
			continue
		}
		sum += 2 * math.Abs(actual[i]-predicted[i]) / denom
		count++
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAPE returns the mean absolute percentage error in percent.
// Points with zero actuals are skipped.
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE returns the mean absolute error.
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE returns the root mean squared error.
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// CalculateRMSSE returns the root mean squared scaled error: forecast MSE
// scaled by the training series' one-step naive-forecast MSE.
func CalculateRMSSE(actual, predicted, train []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 || len(train) < 2 {
		return 0
	}

	num := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		num += diff * diff
	}
	num /= float64(len(actual))

	denom := 0.0
	for i := 1; i < len(train); i++ {
		diff := train[i] - train[i-1]
		denom += diff * diff
	}
	denom /= float64(len(train) - 1)

	if denom == 0 {
		return 0
	}
	return math.Sqrt(num / denom)
}

// Evaluate scores a forecast frame against an actuals frame on the target
// column, keyed per entity. Both frames must cover the same (entity, time)
// cells. train supplies per-entity history and is required for RMSSE.
func Evaluate(metric Metric, actual, forecast *panel.Frame, train *panel.Frame) (map[string]float64, error) {
	if _, ok := metricNames[metric]; !ok {
		return nil, fmt.Errorf("unknown metric %d", metric)
	}
	if metric == RMSSE && train == nil {
		return nil, fmt.Errorf("rmsse requires the training panel")
	}

	target := actual.TargetCol()
	scores := make(map[string]float64, len(actual.Entities()))

	for _, entity := range actual.Entities() {
		a := actual.SeriesValues(entity, target)
		p := forecast.SeriesValues(entity, forecast.TargetCol())
		if len(p) != len(a) {
			return nil, fmt.Errorf("entity %q: forecast has %d rows, actuals have %d", entity, len(p), len(a))
		}
		at := actual.SeriesTimes(entity)
		ft := forecast.SeriesTimes(entity)
		for i := range at {
			if !at[i].Equal(ft[i]) {
				return nil, fmt.Errorf("entity %q: forecast and actual timestamps diverge at row %d", entity, i)
			}
		}

		switch metric {
		case SMAPE:
			scores[entity] = CalculateSMAPE(a, p)
		case MAPE:
			scores[entity] = CalculateMAPE(a, p)
		case MAE:
			scores[entity] = CalculateMAE(a, p)
		case RMSE:
			scores[entity] = CalculateRMSE(a, p)
		case RMSSE:
			scores[entity] = CalculateRMSSE(a, p, train.SeriesValues(entity, train.TargetCol()))
		}
	}

	return scores, nil
}
