package stats

import "math"

const inningsEpsilon = 1e-6

// splitInnings returns the whole innings and the thirds digit of ip. The
// digit is clamped to 2; ok is false when clamping was needed.
func splitInnings(ip float64) (whole float64, thirds int, ok bool) {
	if ip < 0 || math.IsNaN(ip) || math.IsInf(ip, 0) {
		return 0, 0, false
	}
	whole = math.Floor(ip + inningsEpsilon)
	thirds = int(math.Round((ip - whole) * 10))
	if thirds < 0 {
		thirds = 0
	}
	if thirds > 2 {
		return whole, 2, false
	}
	return whole, thirds, true
}

// NormalizeInnings clamps a malformed thirds digit (anything above .2) to .2.
// The boolean reports whether ip was already well formed.
func NormalizeInnings(ip float64) (float64, bool) {
	whole, thirds, ok := splitInnings(ip)
	return whole + float64(thirds)/10, ok
}

// InningScore scores innings pitched where each out is worth a third of
// the per-inning weight. ip must not be multiplied by the weight directly.
func InningScore(ip, weight float64) float64 {
	whole, thirds, _ := splitInnings(ip)
	score := whole * weight
	switch thirds {
	case 1:
		score += weight / 3
	case 2:
		score += weight * 2 / 3
	}
	return score
}

// AddInnings sums two thirds-notation values. A decimal sum whose fraction
// exceeds .2 rolls over into the next whole inning.
func AddInnings(a, b float64) float64 {
	a, _ = NormalizeInnings(a)
	b, _ = NormalizeInnings(b)

	ip := a + b
	frac := math.Mod(ip, 1)
	if frac > 0.2+inningsEpsilon {
		return math.Round((ip+1-0.3)*10) / 10
	}
	return math.Round(ip*10) / 10
}
