package npu

import "testing"

// runToDone submits an image and ticks until done asserts, returning the
// number of ticks taken. The budget catches a stuck FSM.
func runToDone(t *testing.T, p *Pipeline, image []int8, budget int) int {
	t.Helper()
	if !p.Submit(image) {
		t.Fatalf("Submit rejected while idle")
	}
	for ticks := 1; ticks <= budget; ticks++ {
		p.Tick()
		if p.Done() {
			return ticks
		}
	}
	t.Fatalf("no done signal within %d ticks (phase %s)", budget, p.Phase())
	return 0
}

// settle releases the handshake and ticks the core back to idle.
func settle(t *testing.T, p *Pipeline) {
	t.Helper()
	p.Release()
	for i := 0; i < 4 && p.Busy(); i++ {
		p.Tick()
	}
	if p.Busy() {
		t.Fatalf("core still busy after release (phase %s)", p.Phase())
	}
}

// referenceForward is an independent int8 forward pass used to check the
// datapath end to end.
func referenceForward(store *WeightStore, image []int8) (int, [OutputSize]int32) {
	var z1 [HiddenSize]int32
	b1 := store.Biases(LayerHidden)
	for i := 0; i < HiddenSize; i++ {
		z1[i] = int32(b1[i]) * 256
	}
	for j := 0; j < InputSize; j++ {
		row := store.WeightRow(LayerHidden, j)
		for i := 0; i < HiddenSize; i++ {
			z1[i] += int32(image[j]) * int32(row[i])
		}
	}

	var a1 [HiddenSize]int8
	for i := 0; i < HiddenSize; i++ {
		a1[i] = Requantize(z1[i])
	}

	var z2 [OutputSize]int32
	b2 := store.Biases(LayerOutput)
	for i := 0; i < OutputSize; i++ {
		z2[i] = int32(b2[i])
	}
	for j := 0; j < HiddenSize; j++ {
		row := store.WeightRow(LayerOutput, j)
		for i := 0; i < OutputSize; i++ {
			z2[i] += int32(a1[j]) * int32(row[i])
		}
	}

	return Argmax(z2[:]), z2
}

func patternStore(t *testing.T) *WeightStore {
	t.Helper()
	return testStore(t,
		func(input, neuron int) int8 { return int8((input*7 + neuron*13 + 3) % 256) },
		func(neuron int) int8 { return int8(neuron*5 - 70) },
		func(hidden, output int) int8 { return int8((hidden*11 + output*3 + 1) % 256) },
		func(output int) int8 { return int8(20 - output*4) },
	)
}

func patternImage() []int8 {
	image := make([]int8, InputSize)
	for i := range image {
		image[i] = int8((i*37 + 5) % 256)
	}
	return image
}

func TestExactTickCount(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	for _, pipelined := range []bool{false, true} {
		params := DefaultParams()
		params.PipelinedLayer1 = pipelined
		p := NewPipeline(store, params)

		want := TotalInferenceTicks(pipelined)
		if got := runToDone(t, p, image, params.TickBudget); got != want {
			t.Fatalf("pipelined=%v: done after %d ticks, want %d", pipelined, got, want)
		}
		settle(t, p)

		// The constant must hold for every inference, not just the first.
		if got := runToDone(t, p, image, params.TickBudget); got != want {
			t.Fatalf("pipelined=%v second run: done after %d ticks, want %d", pipelined, got, want)
		}
	}
}

func TestVariantsProduceIdenticalScores(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	var results [2][OutputSize]int32
	var predictions [2]int
	for i, pipelined := range []bool{false, true} {
		params := DefaultParams()
		params.PipelinedLayer1 = pipelined
		p := NewPipeline(store, params)
		runToDone(t, p, image, params.TickBudget)
		results[i] = p.Scores()
		predictions[i] = p.Prediction()
	}

	if results[0] != results[1] || predictions[0] != predictions[1] {
		t.Fatalf("variants diverged: %v/%d vs %v/%d", results[0], predictions[0], results[1], predictions[1])
	}
}

func TestPipelineMatchesReferenceForward(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	p := NewPipeline(store, DefaultParams())
	runToDone(t, p, image, DefaultParams().TickBudget)

	wantPred, wantScores := referenceForward(store, image)
	if p.Prediction() != wantPred {
		t.Fatalf("prediction %d, want %d", p.Prediction(), wantPred)
	}
	if p.Scores() != wantScores {
		t.Fatalf("scores %v, want %v", p.Scores(), wantScores)
	}
}

func TestZeroWeightsYieldBiasActivations(t *testing.T) {
	store := testStore(t,
		nil,
		func(neuron int) int8 { return int8(neuron*9 - 100) }, // mixes negative and positive biases
		nil,
		nil,
	)
	image := patternImage() // pixels are irrelevant against zero weights

	p := NewPipeline(store, DefaultParams())
	runToDone(t, p, image, DefaultParams().TickBudget)

	for i := 0; i < HiddenSize; i++ {
		want := Requantize(int32(int8(i*9-100)) * 256)
		if got := p.activation[i]; got != want {
			t.Fatalf("activation[%d] = %d, want ReLU(bias) = %d", i, got, want)
		}
	}
}

func TestEndToEndSingleWeight(t *testing.T) {
	const w = 64
	store := testStore(t,
		func(input, neuron int) int8 {
			if input == 0 && neuron == 3 {
				return w
			}
			return 0
		},
		nil,
		func(hidden, output int) int8 {
			if hidden == 3 && output == 7 {
				return 5
			}
			return 0
		},
		nil,
	)

	image := make([]int8, InputSize)
	image[0] = 127

	p := NewPipeline(store, DefaultParams())
	runToDone(t, p, image, DefaultParams().TickBudget)

	wantHidden := int8(127 * w / 256) // floor, computed independently
	if got := p.activation[3]; got != wantHidden {
		t.Fatalf("hidden activation 3 = %d, want %d", got, wantHidden)
	}
	for i := 0; i < HiddenSize; i++ {
		if i != 3 && p.activation[i] != 0 {
			t.Fatalf("hidden activation %d = %d, want 0", i, p.activation[i])
		}
	}

	wantScore := int32(wantHidden) * 5
	scores := p.Scores()
	if scores[7] != wantScore {
		t.Fatalf("score[7] = %d, want %d", scores[7], wantScore)
	}
	if p.Prediction() != 7 {
		t.Fatalf("prediction %d, want 7", p.Prediction())
	}
}

func TestDeterminismAcrossReset(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	p := NewPipeline(store, DefaultParams())
	runToDone(t, p, image, DefaultParams().TickBudget)
	firstPred, firstScores := p.Prediction(), p.Scores()

	p.Reset()
	runToDone(t, p, image, DefaultParams().TickBudget)

	if p.Prediction() != firstPred || p.Scores() != firstScores {
		t.Fatalf("reset run diverged: %d/%v vs %d/%v",
			p.Prediction(), p.Scores(), firstPred, firstScores)
	}
}

func TestBusyReject(t *testing.T) {
	store := patternStore(t)
	imageA := patternImage()
	imageB := make([]int8, InputSize)
	for i := range imageB {
		imageB[i] = int8(127 - i%255)
	}

	// Uninterrupted baseline for image A.
	baseline := NewPipeline(store, DefaultParams())
	baselineTicks := runToDone(t, baseline, imageA, DefaultParams().TickBudget)

	p := NewPipeline(store, DefaultParams())
	if !p.Submit(imageA) {
		t.Fatalf("Submit rejected while idle")
	}
	if p.Submit(imageB) {
		t.Fatalf("Submit accepted while start is pending")
	}

	ticks := 0
	for !p.Done() {
		p.Tick()
		ticks++
		if ticks == 100 || ticks == 500 {
			if p.Submit(imageB) {
				t.Fatalf("Submit accepted mid-flight at tick %d", ticks)
			}
		}
		if ticks > DefaultParams().TickBudget {
			t.Fatalf("no done signal within budget")
		}
	}

	if ticks != baselineTicks {
		t.Fatalf("mid-flight submits disturbed timing: %d ticks, want %d", ticks, baselineTicks)
	}
	if p.Prediction() != baseline.Prediction() || p.Scores() != baseline.Scores() {
		t.Fatalf("mid-flight submits disturbed the result")
	}
}

func TestPredictionHeldWhileIdle(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	p := NewPipeline(store, DefaultParams())
	runToDone(t, p, image, DefaultParams().TickBudget)
	pred, scores := p.Prediction(), p.Scores()
	settle(t, p)

	for i := 0; i < 50; i++ {
		p.Tick()
	}
	if p.Prediction() != pred || p.Scores() != scores {
		t.Fatalf("idle ticks disturbed the held prediction")
	}
	if p.Done() {
		t.Fatalf("done still asserted while idle")
	}
}

func TestStatsAccounting(t *testing.T) {
	store := patternStore(t)
	image := patternImage()

	params := DefaultParams()
	p := NewPipeline(store, params)
	runToDone(t, p, image, params.TickBudget)

	stats := p.Stats()
	if stats.Inferences != 1 {
		t.Fatalf("inferences = %d, want 1", stats.Inferences)
	}
	if stats.Layer1Ticks != int64(layer1Budget(true)) {
		t.Fatalf("layer-1 ticks = %d, want %d", stats.Layer1Ticks, layer1Budget(true))
	}
	wantMacs := int64(InputSize*HiddenSize + HiddenSize*OutputSize)
	if stats.MacOperations != wantMacs {
		t.Fatalf("mac operations = %d, want %d", stats.MacOperations, wantMacs)
	}
}
