package model

type point struct{ x, y float64 }

// curve is a piecewise-linear mapping through ascending points starting at
// the origin. Inputs at or beyond the last point are mapped by tail.
type curve struct {
	points []point
	tail   func(x float64) float64
}

func (c curve) at(x float64) float64 {
	if x <= 0 {
		return 0
	}
	for i := 1; i < len(c.points); i++ {
		hi := c.points[i]
		if x < hi.x {
			lo := c.points[i-1]
			return clamp01(lo.y + (x-lo.x)/(hi.x-lo.x)*(hi.y-lo.y))
		}
	}
	return clamp01(c.tail(x))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
