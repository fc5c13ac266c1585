package features

import "math"

// Rolling-window helpers over float64 series. Positions where a window is
// not yet full (or contains an undefined value) hold NaN; the engine zeroes
// NaN/Inf in the final feature map.

// diff returns s[i] - s[i-lag], NaN for the first lag positions.
func diff(s []float64, lag int) []float64 {
	out := nanSlice(len(s))
	for i := lag; i < len(s); i++ {
		out[i] = s[i] - s[i-lag]
	}
	return out
}

// rollingSum returns the sum of the trailing w values at each position.
func rollingSum(s []float64, w int) []float64 {
	out := nanSlice(len(s))
	for i := w - 1; i < len(s); i++ {
		sum := 0.0
		valid := true
		for j := i - w + 1; j <= i; j++ {
			if math.IsNaN(s[j]) {
				valid = false
				break
			}
			sum += s[j]
		}
		if valid {
			out[i] = sum
		}
	}
	return out
}

// rollingMean returns the mean of the trailing w values at each position.
func rollingMean(s []float64, w int) []float64 {
	out := rollingSum(s, w)
	for i := range out {
		if !math.IsNaN(out[i]) {
			out[i] /= float64(w)
		}
	}
	return out
}

// rollingStd returns the sample standard deviation (ddof=1) of the
// trailing w values at each position.
func rollingStd(s []float64, w int) []float64 {
	out := nanSlice(len(s))
	if w < 2 {
		return out
	}
	means := rollingMean(s, w)
	for i := w - 1; i < len(s); i++ {
		if math.IsNaN(means[i]) {
			continue
		}
		sumSq := 0.0
		for j := i - w + 1; j <= i; j++ {
			d := s[j] - means[i]
			sumSq += d * d
		}
		out[i] = math.Sqrt(sumSq / float64(w-1))
	}
	return out
}

// ema returns the exponentially weighted mean with alpha = 2/(span+1),
// seeded at the first defined value (pandas ewm, adjust=false).
func ema(s []float64, span int) []float64 {
	out := nanSlice(len(s))
	alpha := 2.0 / (float64(span) + 1.0)
	started := false
	var prev float64
	for i, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if !started {
			prev = v
			started = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
