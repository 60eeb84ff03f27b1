package models

import "math"

// percentage returns part/total as a percentage rounded to two decimals.
// A zero total yields 0 rather than an error; rates on empty entities are
// simply undefined-as-zero.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
