package format

// Delta returns the percentage change from the second-to-last value to the
// last one. It only handles values of at least 1; anything else yields 0.
func Delta(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	last, prev := values[n-1], values[n-2]
	if last < 1 || prev < 1 {
		return 0
	}
	return (last/prev - 1) * 100
}
