package npu

import "fmt"

// Phase enumerates the control FSM states. The zero value is PhaseIdle so a
// freshly constructed FSM is already in its reset state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInit
	PhaseLoadImage
	PhaseLayer1Compute
	PhaseLayer1Activate
	PhaseLayer2Compute
	PhaseArgmax
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInit:
		return "init"
	case PhaseLoadImage:
		return "load_image"
	case PhaseLayer1Compute:
		return "layer1_compute"
	case PhaseLayer1Activate:
		return "layer1_activate"
	case PhaseLayer2Compute:
		return "layer2_compute"
	case PhaseArgmax:
		return "argmax"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("invalid(%d)", int(p))
	}
}

// ControlSignals carries the per-cycle control outputs. Every field is a
// pure function of (phase, counter); the datapath holds no hidden latency.
type ControlSignals struct {
	Phase Phase

	LatchImage bool

	Layer1BiasInit bool
	Layer1Enable   bool
	Layer1Drain    bool
	Layer1Row      int

	ReluApply       bool
	LatchActivation bool

	Layer2BiasInit bool
	Layer2Enable   bool
	Layer2Row      int

	ArgmaxCompute   bool
	LatchPrediction bool

	Busy bool
	Done bool
}

func phaseBudget(phase Phase, pipelined bool) int {
	switch phase {
	case PhaseInit:
		return InitCycles
	case PhaseLoadImage:
		return LoadImageCycles
	case PhaseLayer1Compute:
		return layer1Budget(pipelined)
	case PhaseLayer1Activate:
		return ActivateCycles
	case PhaseLayer2Compute:
		return Layer2ComputeCycles
	case PhaseArgmax:
		return ArgmaxPhaseCycles
	default:
		return 0
	}
}

// NextState computes the successor state. start is sampled only in
// PhaseIdle; PhaseDone holds until start deasserts. An out-of-enumeration
// phase forces PhaseIdle as a safety net.
func NextState(phase Phase, counter int, start bool, pipelined bool) (Phase, int) {
	switch phase {
	case PhaseIdle:
		if start {
			return PhaseInit, 0
		}
		return PhaseIdle, 0
	case PhaseInit, PhaseLoadImage, PhaseLayer1Compute, PhaseLayer1Activate,
		PhaseLayer2Compute, PhaseArgmax:
		if counter+1 >= phaseBudget(phase, pipelined) {
			return phase + 1, 0
		}
		return phase, counter + 1
	case PhaseDone:
		if !start {
			return PhaseIdle, 0
		}
		return PhaseDone, 0
	default:
		return PhaseIdle, 0
	}
}

// ControlAt computes the control outputs asserted while the FSM holds
// (phase, counter). An out-of-enumeration phase deasserts everything.
func ControlAt(phase Phase, counter int, pipelined bool) ControlSignals {
	sigs := ControlSignals{Phase: phase}

	switch phase {
	case PhaseIdle:
		return sigs
	case PhaseInit:
		// reset spacer only
	case PhaseLoadImage:
		sigs.LatchImage = counter == 0
	case PhaseLayer1Compute:
		switch {
		case counter == 0:
			sigs.Layer1BiasInit = true
		case counter == 1:
			// broadcast setup
		case counter < 2+InputSize:
			sigs.Layer1Enable = true
			sigs.Layer1Row = counter - 2
		default:
			sigs.Layer1Drain = pipelined
		}
	case PhaseLayer1Activate:
		sigs.ReluApply = counter == 0
		sigs.LatchActivation = counter == 1
	case PhaseLayer2Compute:
		if counter == 0 {
			sigs.Layer2BiasInit = true
		} else {
			sigs.Layer2Enable = true
			sigs.Layer2Row = counter - 1
		}
	case PhaseArgmax:
		sigs.ArgmaxCompute = counter == 0
		sigs.LatchPrediction = counter == 1
	case PhaseDone:
		sigs.Done = true
	default:
		return ControlSignals{Phase: phase}
	}

	sigs.Busy = true
	return sigs
}

// ControlFSM is the stateful wrapper around the pure transition functions.
type ControlFSM struct {
	phase     Phase
	counter   int
	pipelined bool
}

func NewControlFSM(pipelined bool) *ControlFSM {
	return &ControlFSM{pipelined: pipelined}
}

func (f *ControlFSM) Reset() {
	f.phase = PhaseIdle
	f.counter = 0
}

func (f *ControlFSM) Phase() Phase {
	return f.phase
}

// Tick emits the control outputs for the state held during this cycle, then
// advances the state.
func (f *ControlFSM) Tick(start bool) ControlSignals {
	sigs := ControlAt(f.phase, f.counter, f.pipelined)
	f.phase, f.counter = NextState(f.phase, f.counter, start, f.pipelined)
	return sigs
}
