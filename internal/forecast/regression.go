// Package forecast contains the pure temperature forecasting maths: ordinary
// least-squares regression over the sample history and Holt double
// exponential smoothing. Nothing here touches I/O, clocks, or shared state.
package forecast

import "github.com/chewxy/math32"

// degenerateDenominator is the |n·Σx² − (Σx)²| below which the x values are
// treated as a single point and no slope is fitted.
const degenerateDenominator = 1e-6

// LinearRegression fits y = slope·x + intercept over the first n pairs of xs
// and ys. n is clamped to the shorter slice.
//
// With fewer than two points it returns slope 0, the single value (or 0) as
// intercept and ok=false. When the x values collapse to one point it returns
// slope 0, the mean of y and ok=false.
func LinearRegression(xs, ys []float32, n int) (slope, intercept float32, ok bool) {
	n = max(0, min(n, len(xs), len(ys)))
	if n < 2 {
		if n == 1 {
			return 0, ys[0], false
		}
		return 0, 0, false
	}

	var sumX, sumY, sumXY, sumX2 float32
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	fn := float32(n)
	d := fn*sumX2 - sumX*sumX
	if math32.Abs(d) < degenerateDenominator {
		return 0, sumY / fn, false
	}

	slope = (fn*sumXY - sumX*sumY) / d
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept, true
}
