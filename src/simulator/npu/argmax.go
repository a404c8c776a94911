package npu

// Argmax returns the index of the maximum score, breaking ties toward the
// lowest index (strict comparison against the running maximum).
func Argmax(scores []int32) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
