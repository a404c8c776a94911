package npu

// Network geometry is fixed by the deployed model: a fully connected
// 784-32-10 network with int8 weights, biases, pixels and activations.
const (
	ImageWidth  = 28
	ImageHeight = 28

	InputSize  = ImageWidth * ImageHeight
	HiddenSize = 32
	OutputSize = 10
)

// Layer1BiasShift aligns the layer-1 bias with the requantization point:
// biases are pre-scaled by 256 at accumulator init so that the activation
// unit can recover an int8 by discarding the low 8 bits. Layer 2 feeds the
// classifier directly and carries no shift.
const Layer1BiasShift = 8

// Per-phase cycle budgets. A phase transitions only once its counter reaches
// the budget, so these constants fully determine the inference latency.
const (
	InitCycles          = 1
	LoadImageCycles     = 3   // latch, stabilize, prepare
	Layer1ComputeCycles = 786 // bias-init + setup + 784 per-pixel enables
	Layer1DrainCycles   = 2   // extra cycles for the registered-operand stage
	ActivateCycles      = 3   // ReLU apply, activation latch, prepare
	Layer2ComputeCycles = 33  // bias-init/setup + 32 per-activation enables
	ArgmaxPhaseCycles   = 2   // compute, stabilize
)

// Params bundles the runtime knobs of the inference core.
type Params struct {
	// PipelinedLayer1 selects the two-stage layer-1 MAC datapath that
	// registers operands for one cycle before accumulating. Both settings
	// produce identical accumulator values; only the cycle count differs.
	PipelinedLayer1 bool

	// TickBudget bounds the ticks a harness allows per inference before it
	// declares the control FSM stuck.
	TickBudget int
}

func DefaultParams() Params {
	return Params{
		PipelinedLayer1: true,
		TickBudget:      2000,
	}
}

func layer1Budget(pipelined bool) int {
	if pipelined {
		return Layer1ComputeCycles + Layer1DrainCycles
	}
	return Layer1ComputeCycles
}

// TotalInferenceTicks returns the exact number of ticks one inference takes,
// counted from the IDLE tick that samples an asserted start signal through
// the first tick on which done is asserted: 832 for the pipelined datapath,
// 830 for the combinational one.
func TotalInferenceTicks(pipelined bool) int {
	return 1 + InitCycles + LoadImageCycles + layer1Budget(pipelined) +
		ActivateCycles + Layer2ComputeCycles + ArgmaxPhaseCycles + 1
}
