package equity

import "equity-lab/internal/domain"

// Downsample reduces a series to at most target points by uniform index
// striding. The first and last points are always preserved exactly, so
// display callers keep the seed and the live snapshot. Series at or under
// the target are returned unchanged.
func Downsample(points []domain.EquityPoint, target int) []domain.EquityPoint {
	n := len(points)
	if target <= 0 || n <= target {
		return points
	}
	if target == 1 {
		return points[n-1:]
	}

	out := make([]domain.EquityPoint, 0, target)
	stride := float64(n-1) / float64(target-1)
	prev := -1
	for i := 0; i < target; i++ {
		idx := int(float64(i)*stride + 0.5)
		if idx >= n {
			idx = n - 1
		}
		if idx == prev {
			continue
		}
		out = append(out, points[idx])
		prev = idx
	}

	// Striding rounds toward interior indices; the last point must stay
	// exact.
	if out[len(out)-1].Date != points[n-1].Date {
		out = append(out, points[n-1])
	}
	return out
}
