package simulator

import (
	"fmt"

	"npusim/src/misc"
	"npusim/src/simulator/npu"
)

// BatchPlatform feeds a batch of images through one inference pipeline using
// the level-sensitive start/done handshake, one tick per Cycle call. A tick
// budget per inference catches a stuck control FSM.
type BatchPlatform struct {
	pipeline    *npu.Pipeline
	tick_budget int

	verbose      int
	out_filepath string

	images [][]int8
	labels []int

	current         int
	awaiting_result bool
	inflight_ticks  int
	predictions     []int
	inference_ticks []int
	finished        bool
}

func (this *BatchPlatform) Init(command_line_parser *misc.CommandLineParser) {
	data_dirpath := command_line_parser.StringParameter("data_dirpath")
	num_images := int(command_line_parser.IntParameter("num_images"))

	table_loader := new(misc.TableLoader)
	table_loader.Init(data_dirpath)

	w1, err := table_loader.LoadInt8("w1.hex", npu.InputSize*npu.HiddenSize)
	if err != nil {
		panic(err)
	}
	b1, err := table_loader.LoadInt8("b1.hex", npu.HiddenSize)
	if err != nil {
		panic(err)
	}
	w2, err := table_loader.LoadInt8("w2.hex", npu.HiddenSize*npu.OutputSize)
	if err != nil {
		panic(err)
	}
	b2, err := table_loader.LoadInt8("b2.hex", npu.OutputSize)
	if err != nil {
		panic(err)
	}

	store, err := npu.NewWeightStore(w1, b1, w2, b2)
	if err != nil {
		panic(err)
	}

	pixels, err := table_loader.LoadAllInt8("test_imgs.hex")
	if err != nil {
		panic(err)
	}
	if len(pixels)%npu.InputSize != 0 {
		panic(fmt.Errorf("test_imgs.hex: %d values is not a whole number of %d-pixel images", len(pixels), npu.InputSize))
	}
	available := len(pixels) / npu.InputSize
	if num_images > available {
		panic(fmt.Errorf("num_images %d exceeds the %d images in test_imgs.hex", num_images, available))
	}

	images := make([][]int8, num_images)
	for i := 0; i < num_images; i++ {
		images[i] = pixels[i*npu.InputSize : (i+1)*npu.InputSize]
	}

	labels, err := table_loader.LoadLabels("test_labels.txt")
	if err != nil {
		panic(err)
	}
	if len(labels) < num_images {
		panic(fmt.Errorf("test_labels.txt: %d labels for %d images", len(labels), num_images))
	}
	labels = labels[:num_images]

	params := npu.DefaultParams()
	params.PipelinedLayer1 = command_line_parser.BoolParameter("pipelined")
	params.TickBudget = int(command_line_parser.IntParameter("tick_budget"))

	this.InitWithData(store, params, images, labels)
	this.verbose = int(command_line_parser.IntParameter("verbose"))
	this.out_filepath = command_line_parser.StringParameter("out_filepath")
}

// InitWithData wires the platform from in-memory tables, bypassing the file
// loading path.
func (this *BatchPlatform) InitWithData(store *npu.WeightStore, params npu.Params, images [][]int8, labels []int) {
	this.pipeline = npu.NewPipeline(store, params)
	this.tick_budget = params.TickBudget
	this.images = images
	this.labels = labels
	this.current = 0
	this.awaiting_result = false
	this.inflight_ticks = 0
	this.predictions = make([]int, 0, len(images))
	this.inference_ticks = make([]int, 0, len(images))
	this.finished = len(images) == 0
}

func (this *BatchPlatform) Fini() {
	this.images = nil
	this.labels = nil
	this.pipeline = nil
}

func (this *BatchPlatform) IsFinished() bool {
	return this.finished
}

func (this *BatchPlatform) Cycle() {
	if this.finished {
		return
	}

	if !this.pipeline.Busy() {
		if this.current >= len(this.images) {
			this.finished = true
			return
		}
		if !this.pipeline.Submit(this.images[this.current]) {
			panic(fmt.Sprintf("image %d rejected by an idle pipeline", this.current))
		}
		this.awaiting_result = true
		this.inflight_ticks = 0
	}

	this.pipeline.Tick()
	this.inflight_ticks++

	if this.awaiting_result && this.pipeline.Done() {
		this.predictions = append(this.predictions, this.pipeline.Prediction())
		this.inference_ticks = append(this.inference_ticks, this.inflight_ticks)
		this.awaiting_result = false
		this.pipeline.Release()
		this.current++
		return
	}

	if this.awaiting_result && this.inflight_ticks > this.tick_budget {
		panic(fmt.Sprintf("control FSM stuck on image %d: no done within %d ticks (phase %s)",
			this.current, this.tick_budget, this.pipeline.Phase()))
	}
}

// Predictions returns the results recorded so far.
func (this *BatchPlatform) Predictions() []int {
	return this.predictions
}

// InferenceTicks returns the per-image tick counts from submit to done.
func (this *BatchPlatform) InferenceTicks() []int {
	return this.inference_ticks
}

func (this *BatchPlatform) Dump() {
	lines := make([]string, 0, len(this.predictions)+2)
	correct := 0
	labeled := 0
	for i, prediction := range this.predictions {
		line := fmt.Sprintf("image %d: predicted %d", i, prediction)
		if i < len(this.labels) {
			line += fmt.Sprintf(", label %d", this.labels[i])
			labeled++
			if prediction == this.labels[i] {
				correct++
			}
		}
		line += fmt.Sprintf(" (%d ticks)", this.inference_ticks[i])
		lines = append(lines, line)
		if this.verbose > 0 {
			fmt.Println(line)
		}
	}

	summary := fmt.Sprintf("%d images inferred", len(this.predictions))
	if labeled > 0 {
		summary += fmt.Sprintf(", accuracy %d/%d", correct, labeled)
	}
	lines = append(lines, summary)
	fmt.Println(summary)

	if this.pipeline != nil {
		stats := this.pipeline.Stats()
		stats_line := fmt.Sprintf("ticks total=%d layer1=%d layer2=%d mac_ops=%d",
			stats.TotalTicks, stats.Layer1Ticks, stats.Layer2Ticks, stats.MacOperations)
		lines = append(lines, stats_line)
		if this.verbose > 0 {
			fmt.Println(stats_line)
		}
	}

	if this.out_filepath != "" {
		file_dumper := new(misc.FileDumper)
		file_dumper.Init(this.out_filepath)
		file_dumper.WriteLines(lines)
	}
}
