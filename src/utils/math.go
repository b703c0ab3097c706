package utils

import (
	"math"
	"math/rand"
	"sort"
)

// Pure numeric helpers. Empty inputs return 0 and zero denominators
// yield 0 unless stated otherwise on the function.

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.00
	}

	sum := 0.00
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.00
	}

	mean := Mean(values)
	sum := 0.00
	for _, value := range values {
		diff := value - mean
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0.00
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[middle-1] + sorted[middle]) / 2
	}

	return sorted[middle]
}

func Lerp(a float64, b float64, t float64) float64 {
	return a + (b-a)*t
}

func Clamp(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}

	return value
}

// Normalize rescales values into [0,1] by min-max. A flat input maps to zeros.
func Normalize(values []float64) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}

	min := values[0]
	max := values[0]
	for _, value := range values {
		min = math.Min(min, value)
		max = math.Max(max, value)
	}

	if max == min {
		return result
	}

	for i, value := range values {
		result[i] = (value - min) / (max - min)
	}

	return result
}

func ZScore(value float64, values []float64) float64 {
	sigma := StdDev(values)
	if sigma == 0.00 {
		return 0.00
	}

	return (value - Mean(values)) / sigma
}

// Sma is the arithmetic mean of the last period samples.
func Sma(values []float64, period int) float64 {
	if len(values) == 0 || period < 1 {
		return 0.00
	}

	if period > len(values) {
		period = len(values)
	}

	return Mean(values[len(values)-period:])
}

// Ema uses alpha = 2/(period+1) seeded with the first sample.
func Ema(values []float64, period int) float64 {
	if len(values) == 0 || period < 1 {
		return 0.00
	}

	alpha := 2.00 / (float64(period) + 1.00)
	ema := values[0]
	for _, value := range values[1:] {
		ema += alpha * (value - ema)
	}

	return ema
}

func Bollinger(values []float64, period int, width float64) (float64, float64, float64) {
	if len(values) == 0 || period < 1 {
		return 0.00, 0.00, 0.00
	}

	if period > len(values) {
		period = len(values)
	}

	window := values[len(values)-period:]
	middle := Mean(window)
	sigma := StdDev(window)

	return middle + width*sigma, middle, middle - width*sigma
}

// Rsi is Wilder-style: EMA smoothing of gains and losses over the period.
// Fewer than period+1 samples yield the neutral 50.
func Rsi(values []float64, period int) float64 {
	if len(values) < period+1 || period < 1 {
		return 50.00
	}

	avgGain := 0.00
	avgLoss := 0.00
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain := 0.00
		loss := 0.00
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0.00 {
		return 100.00
	}

	return 100.00 - 100.00/(1.00+avgGain/avgLoss)
}

// Macd returns the MACD line, the signal line and the histogram (12/26/9).
func Macd(values []float64) (float64, float64, float64) {
	if len(values) < 26 {
		return 0.00, 0.00, 0.00
	}

	macdSeries := make([]float64, 0, len(values)-25)
	for i := 26; i <= len(values); i++ {
		window := values[:i]
		macdSeries = append(macdSeries, Ema(window, 12)-Ema(window, 26))
	}

	macd := macdSeries[len(macdSeries)-1]
	signal := Ema(macdSeries, 9)

	return macd, signal, macd - signal
}

func Pearson(a []float64, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0.00
	}

	meanA := Mean(a)
	meanB := Mean(b)

	covariance := 0.00
	varianceA := 0.00
	varianceB := 0.00
	for i := range a {
		deltaA := a[i] - meanA
		deltaB := b[i] - meanB
		covariance += deltaA * deltaB
		varianceA += deltaA * deltaA
		varianceB += deltaB * deltaB
	}

	if varianceA == 0.00 || varianceB == 0.00 {
		return 0.00
	}

	return covariance / math.Sqrt(varianceA*varianceB)
}

// Returns computes simple returns; the result has length len(prices)-1.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0.00 {
			result = append(result, 0.00)
			continue
		}

		result = append(result, prices[i]/prices[i-1]-1.00)
	}

	return result
}

func Sharpe(returns []float64, annualization float64) float64 {
	sigma := StdDev(returns)
	if sigma == 0.00 {
		return 0.00
	}

	return Mean(returns) / sigma * math.Sqrt(annualization)
}

// MaxDrawdown returns the largest peak-to-trough fraction of an equity curve.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0.00
	}

	peak := equity[0]
	maxDrawdown := 0.00
	for _, value := range equity {
		if value > peak {
			peak = value
		}

		if peak > 0.00 {
			drawdown := (peak - value) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return maxDrawdown
}

// Kelly is win - (1-win)/(avgWin/avgLoss). Zero when avgLoss or avgWin is 0.
func Kelly(winRate float64, avgWin float64, avgLoss float64) float64 {
	if avgLoss == 0.00 || avgWin == 0.00 {
		return 0.00
	}

	return winRate - (1.00-winRate)/(avgWin/avgLoss)
}

func Euclidean(a []float64, b []float64) float64 {
	if len(a) != len(b) {
		return 0.00
	}

	sum := 0.00
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum)
}

// CosineSimilarity is 0 when either vector has zero norm.
func CosineSimilarity(a []float64, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.00
	}

	dot := 0.00
	normA := 0.00
	normB := 0.00
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0.00 || normB == 0.00 {
		return 0.00
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Smoothstep is the cubic Hermite interpolation between the edges.
func Smoothstep(edge0 float64, edge1 float64, x float64) float64 {
	if edge0 == edge1 {
		return 0.00
	}

	t := Clamp((x-edge0)/(edge1-edge0), 0.00, 1.00)

	return t * t * (3.00 - 2.00*t)
}

// SmootherStep is the quintic variant with zero second derivative at the edges.
func SmootherStep(edge0 float64, edge1 float64, x float64) float64 {
	if edge0 == edge1 {
		return 0.00
	}

	t := Clamp((x-edge0)/(edge1-edge0), 0.00, 1.00)

	return t * t * t * (t*(t*6.00-15.00) + 10.00)
}

func Sigmoid(x float64) float64 {
	return 1.00 / (1.00 + math.Exp(-x))
}

// Gaussian draws from N(mean, sigma) via Box-Muller.
func Gaussian(mean float64, sigma float64, rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	for u1 == 0.00 {
		u1 = rng.Float64()
	}

	z := math.Sqrt(-2.00*math.Log(u1)) * math.Cos(2.00*math.Pi*u2)

	return mean + sigma*z
}

// Sanitize replaces NaN and Inf with 0 at component boundaries.
func Sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0.00
	}

	return value
}
