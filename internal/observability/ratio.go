package observability

import "strconv"

func parseRatio(raw string, def float64) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return clampRatio(f)
}
