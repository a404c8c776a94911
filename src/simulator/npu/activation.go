package npu

// Requantize maps a wide accumulator value back to an int8 activation:
// negative values clamp to 0, the remainder is truncated by an arithmetic
// right shift of 8 (no rounding), and anything the shift leaves above +127
// saturates. The layer-1 bias pre-scale puts the fixed point at bit 8, so
// the surviving bits are exactly [15:8] of the accumulator.
func Requantize(acc int32) int8 {
	if acc < 0 {
		return 0
	}
	shifted := acc >> 8
	if shifted > 127 {
		return 127
	}
	return int8(shifted)
}
