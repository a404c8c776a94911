package npu

// LaneArray models N parallel multiply-accumulate lanes sharing a single
// broadcast operand per cycle. Each lane keeps a signed 32-bit accumulator;
// products are exact signed 8x8->16-bit, sign-extended before the add, with
// no rounding anywhere in the MAC. With at most 784 accumulated terms the
// worst-case magnitude stays under 2^24, so the accumulators cannot wrap.
//
// With the registered-operand stage enabled (pipelined layer 1), an enable
// latches the broadcast operand and row for one cycle and accumulates the
// previously latched pair, so the array needs drain pulses after the last
// enable. Both datapaths produce bit-identical accumulator values.
type LaneArray struct {
	store     *WeightStore
	layer     Layer
	width     int
	biasShift uint
	pipelined bool

	acc []int32

	stageValid bool
	stageIn    int8
	stageRow   int
}

func NewLaneArray(store *WeightStore, layer Layer, biasShift uint, pipelined bool) *LaneArray {
	width := store.Width(layer)
	return &LaneArray{
		store:     store,
		layer:     layer,
		width:     width,
		biasShift: biasShift,
		pipelined: pipelined,
		acc:       make([]int32, width),
	}
}

func (a *LaneArray) Width() int {
	return a.width
}

// Clear resets every accumulator to zero and drops any staged operand.
func (a *LaneArray) Clear() {
	for i := range a.acc {
		a.acc[i] = 0
	}
	a.stageValid = false
}

// BiasInit sets every lane's accumulator to its sign-extended bias, shifted
// left by the array's bias shift. Any staged operand is dropped.
func (a *LaneArray) BiasInit() {
	biases := a.store.Biases(a.layer)
	for i := range a.acc {
		a.acc[i] = int32(biases[i]) << a.biasShift
	}
	a.stageValid = false
}

// Enable feeds one broadcast operand to all lanes. The combinational
// datapath accumulates in the same cycle; the registered datapath
// accumulates the previously staged pair and latches the new one.
func (a *LaneArray) Enable(input int8, row int) {
	if !a.pipelined {
		a.accumulate(input, row)
		return
	}

	if a.stageValid {
		a.accumulate(a.stageIn, a.stageRow)
	}
	a.stageIn = input
	a.stageRow = row
	a.stageValid = true
}

// Drain accumulates a staged operand pair without latching a new one. A
// drain with nothing staged is a no-op.
func (a *LaneArray) Drain() {
	if !a.stageValid {
		return
	}
	a.accumulate(a.stageIn, a.stageRow)
	a.stageValid = false
}

func (a *LaneArray) accumulate(input int8, row int) {
	weights := a.store.WeightRow(a.layer, row)
	for i := range a.acc {
		product := int16(input) * int16(weights[i])
		a.acc[i] += int32(product)
	}
}

func (a *LaneArray) Accumulator(lane int) int32 {
	return a.acc[lane]
}

// Accumulators returns a snapshot copy of all lane accumulators.
func (a *LaneArray) Accumulators() []int32 {
	return append([]int32(nil), a.acc...)
}
