package scope

// Downsample decimates src to at most maxPoints elements for display.
// Destination-based: dst is reused when it has sufficient capacity. The last
// element of src is always kept so the plot reaches the end of the sweep.
func Downsample[T any](dst, src []T, maxPoints int) []T {
	if maxPoints <= 0 || len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
			copy(dst, src)
			return dst
		}
		out := make([]T, len(src))
		copy(out, src)
		return out
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(src)-1) / float64(maxPoints-1)
	for i := range maxPoints - 1 {
		dst = append(dst, src[int(float64(i)*step)])
	}
	return append(dst, src[len(src)-1])
}
