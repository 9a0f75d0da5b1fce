package ranking

// DistributeRemainder spreads remainder over gains proportionally to each gain.
// It returns a new map and leaves gains untouched. Nothing is added when the
// remainder is not positive or nothing was distributed. Call it once per allocation.
func DistributeRemainder(gains map[int64]float64, remainder float64) map[int64]float64 {
	out := make(map[int64]float64, len(gains))
	total := 0.0
	for id, gain := range gains {
		out[id] = gain
		total += gain
	}

	if remainder <= 0 || total == 0 {
		return out
	}

	for id, gain := range gains {
		out[id] = gain + gain/total*remainder
	}
	return out
}
