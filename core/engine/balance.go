package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/symposia/revdist/core/distlog"
)

// loadBalance summarizes the reviewer load distribution after a run for the
// audit record.
func loadBalance(loads map[string]int) *distlog.BalanceSummary {
	if len(loads) == 0 {
		return nil
	}
	vals := make([]float64, 0, len(loads))
	first := true
	var min, max int
	for _, load := range loads {
		vals = append(vals, float64(load))
		if first || load < min {
			min = load
		}
		if first || load > max {
			max = load
		}
		first = false
	}
	summary := &distlog.BalanceSummary{
		Mean: stat.Mean(vals, nil),
		Min:  min,
		Max:  max,
	}
	if len(vals) > 1 {
		summary.StdDev = stat.StdDev(vals, nil)
	}
	return summary
}
