package npu

// Pipeline owns the image buffer, the stable inter-layer activation register
// and the externally visible prediction register, and wires the control FSM
// to the two MAC lane arrays. One synchronous clock drives everything; a
// single call to Tick advances the whole core by one cycle.
//
// The driver is not re-entrant: Submit while an inference is in flight is
// rejected as a no-op and the in-flight inference completes unaffected.
type Pipeline struct {
	params Params
	store  *WeightStore
	fsm    *ControlFSM

	start bool

	stagedImage [InputSize]int8 // written by Submit, picked up at the load cycle
	image       [InputSize]int8 // latched exactly once per inference

	layer1 *LaneArray
	layer2 *LaneArray

	reluStage  [HiddenSize]int8 // combinational ReLU outputs awaiting the latch
	activation [HiddenSize]int8 // stable through layer 2

	stagePrediction int
	stageScores     [OutputSize]int32

	prediction int
	scores     [OutputSize]int32
	done       bool

	stats Stats
}

func NewPipeline(store *WeightStore, params Params) *Pipeline {
	return &Pipeline{
		params: params,
		store:  store,
		fsm:    NewControlFSM(params.PipelinedLayer1),
		layer1: NewLaneArray(store, LayerHidden, Layer1BiasShift, params.PipelinedLayer1),
		layer2: NewLaneArray(store, LayerOutput, 0, false),
	}
}

// Submit stages an image and asserts the start level. It reports false, and
// changes nothing, when the core is busy or the image has the wrong size.
func (p *Pipeline) Submit(image []int8) bool {
	if len(image) != InputSize {
		return false
	}
	if p.Busy() {
		p.stats.RejectedStarts++
		return false
	}
	copy(p.stagedImage[:], image)
	p.start = true
	return true
}

// Release deasserts the start level, letting the FSM leave DONE. The
// prediction register keeps the completed result.
func (p *Pipeline) Release() {
	p.start = false
}

// Busy reports whether an inference has been requested or is in flight.
func (p *Pipeline) Busy() bool {
	return p.start || p.fsm.Phase() != PhaseIdle
}

// Done reports the level-sensitive done signal of the most recent tick.
func (p *Pipeline) Done() bool {
	return p.done
}

func (p *Pipeline) Prediction() int {
	return p.prediction
}

// Scores returns the score vector latched with the current prediction.
func (p *Pipeline) Scores() [OutputSize]int32 {
	return p.scores
}

func (p *Pipeline) Phase() Phase {
	return p.fsm.Phase()
}

func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Reset forces the core back to IDLE and clears all datapath registers,
// including the visible prediction.
func (p *Pipeline) Reset() {
	p.fsm.Reset()
	p.start = false
	p.done = false
	p.layer1.Clear()
	p.layer2.Clear()
	p.stagedImage = [InputSize]int8{}
	p.image = [InputSize]int8{}
	p.reluStage = [HiddenSize]int8{}
	p.activation = [HiddenSize]int8{}
	p.stagePrediction = 0
	p.stageScores = [OutputSize]int32{}
	p.prediction = 0
	p.scores = [OutputSize]int32{}
	p.stats.Reset()
}

// Tick advances the core by one clock cycle: the FSM emits the control
// outputs for the current state and every datapath register reacts to its
// pulse within the same cycle.
func (p *Pipeline) Tick() {
	sigs := p.fsm.Tick(p.start)
	p.stats.observe(sigs)

	if sigs.LatchImage {
		p.image = p.stagedImage
	}

	if sigs.Layer1BiasInit {
		p.layer1.BiasInit()
	}
	if sigs.Layer1Enable {
		p.layer1.Enable(p.image[sigs.Layer1Row], sigs.Layer1Row)
	}
	if sigs.Layer1Drain {
		p.layer1.Drain()
	}

	if sigs.ReluApply {
		for i := 0; i < HiddenSize; i++ {
			p.reluStage[i] = Requantize(p.layer1.Accumulator(i))
		}
	}
	if sigs.LatchActivation {
		p.activation = p.reluStage
	}

	if sigs.Layer2BiasInit {
		p.layer2.BiasInit()
	}
	if sigs.Layer2Enable {
		p.layer2.Enable(p.activation[sigs.Layer2Row], sigs.Layer2Row)
	}

	if sigs.ArgmaxCompute {
		copy(p.stageScores[:], p.layer2.Accumulators())
		p.stagePrediction = Argmax(p.stageScores[:])
	}
	if sigs.LatchPrediction {
		p.prediction = p.stagePrediction
		p.scores = p.stageScores
		p.stats.Inferences++
	}

	p.done = sigs.Done
}
