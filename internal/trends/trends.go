// Package trends derives change and rolling-average columns from river readings.
package trends

import (
	"sort"

	"github.com/ngmaloney/fishing-log/internal/models"
)

// Window is the number of samples averaged by the rolling column
const Window = 3

// Calculate returns a copy of samples sorted by time, with a first-difference
// and a trailing rolling-mean column added for every tracked parameter present.
// Equal timestamps keep their input order. The input is not modified.
//
// A change is null on the first row or when either operand is null. A rolling
// mean is null unless the current row and the two before it all have a value.
func Calculate(samples []models.EnvironmentalSample) []models.EnvironmentalSample {
	out := make([]models.EnvironmentalSample, len(samples))
	for i, s := range samples {
		out[i] = s.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})

	for _, col := range trackedColumns(out) {
		changeCol := models.ChangeColumn(col)
		avgCol := models.RollingAvgColumn(col)

		for i := range out {
			delete(out[i].Values, changeCol)
			delete(out[i].Values, avgCol)

			cur, ok := out[i].Get(col)
			if !ok || i == 0 {
				continue
			}
			if prev, ok := out[i-1].Get(col); ok {
				out[i].Set(changeCol, cur-prev)
			}

			if i < Window-1 {
				continue
			}
			sum, complete := 0.0, true
			for j := i - Window + 1; j <= i; j++ {
				v, ok := out[j].Get(col)
				if !ok {
					complete = false
					break
				}
				sum += v
			}
			if complete {
				out[i].Set(avgCol, sum/Window)
			}
		}
	}

	return out
}

// trackedColumns lists the tracked parameter columns with at least one value
func trackedColumns(samples []models.EnvironmentalSample) []string {
	var cols []string
	for _, code := range models.TrackedParams {
		col := models.ParamColumns[code]
		for _, s := range samples {
			if _, ok := s.Get(col); ok {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}
