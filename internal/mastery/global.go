package mastery

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Apply adds a delta to a mastery value, keeping it inside [0, 1].
func Apply(current, delta float64) float64 {
	return Clamp(current+delta, 0, 1)
}

// Global computes the weighted mean of per-target mastery. Targets
// missing from weights count with weight 1; non-positive weights are
// treated as 1 too. An empty mastery map yields 0.
func Global(masteries map[int]float64, weights map[int]float64) float64 {
	if len(masteries) == 0 {
		return 0
	}
	var sum, total float64
	for id, m := range masteries {
		w := 1.0
		if got, ok := weights[id]; ok && got > 0 {
			w = got
		}
		sum += m * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
