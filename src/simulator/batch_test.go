package simulator

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"npusim/src/misc"
	"npusim/src/simulator/npu"
)

func runPlatform(t *testing.T, platform *BatchPlatform, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if platform.IsFinished() {
			return
		}
		platform.Cycle()
	}
	t.Fatalf("platform still running after %d cycles", limit)
}

func singleWeightStore(t *testing.T) *npu.WeightStore {
	t.Helper()

	w1 := make([]int8, npu.InputSize*npu.HiddenSize)
	w2 := make([]int8, npu.HiddenSize*npu.OutputSize)
	w1[0*npu.HiddenSize+3] = 64 // input 0 -> hidden 3
	w2[3*npu.OutputSize+7] = 5  // hidden 3 -> class 7

	store, err := npu.NewWeightStore(w1, make([]int8, npu.HiddenSize), w2, make([]int8, npu.OutputSize))
	if err != nil {
		t.Fatalf("NewWeightStore: %v", err)
	}
	return store
}

func TestBatchPlatformRunsAllImages(t *testing.T) {
	store := singleWeightStore(t)

	hot := make([]int8, npu.InputSize)
	hot[0] = 127
	cold := make([]int8, npu.InputSize)

	params := npu.DefaultParams()
	platform := new(BatchPlatform)
	platform.InitWithData(store, params, [][]int8{hot, cold, hot}, []int{7, 0, 7})

	runPlatform(t, platform, 4*params.TickBudget)

	predictions := platform.Predictions()
	if len(predictions) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(predictions))
	}
	if predictions[0] != 7 || predictions[1] != 0 || predictions[2] != 7 {
		t.Fatalf("predictions = %v, want [7 0 7]", predictions)
	}

	want := npu.TotalInferenceTicks(params.PipelinedLayer1)
	for i, ticks := range platform.InferenceTicks() {
		if ticks != want {
			t.Fatalf("image %d took %d ticks, want %d", i, ticks, want)
		}
	}
}

func writeHexTable(t *testing.T, dirpath string, filename string, values []int8) {
	t.Helper()
	content := ""
	for _, v := range values {
		content += fmt.Sprintf("%02x\n", uint8(v))
	}
	if err := os.WriteFile(filepath.Join(dirpath, filename), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestSimulatorFromHexFiles(t *testing.T) {
	dirpath := t.TempDir()

	w1 := make([]int8, npu.InputSize*npu.HiddenSize)
	w2 := make([]int8, npu.HiddenSize*npu.OutputSize)
	w1[0*npu.HiddenSize+3] = 64
	w2[3*npu.OutputSize+7] = 5
	writeHexTable(t, dirpath, "w1.hex", w1)
	writeHexTable(t, dirpath, "b1.hex", make([]int8, npu.HiddenSize))
	writeHexTable(t, dirpath, "w2.hex", w2)
	writeHexTable(t, dirpath, "b2.hex", make([]int8, npu.OutputSize))

	image := make([]int8, npu.InputSize)
	image[0] = 127
	writeHexTable(t, dirpath, "test_imgs.hex", image)
	if err := os.WriteFile(filepath.Join(dirpath, "test_labels.txt"), []byte("7\n"), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}

	parser := new(misc.CommandLineParser)
	parser.Init()
	parser.AddOption(misc.STRING, "platform", "batch", "")
	parser.AddOption(misc.STRING, "data_dirpath", "data", "")
	parser.AddOption(misc.INT, "num_images", "20", "")
	parser.AddOption(misc.BOOL, "pipelined", "true", "")
	parser.AddOption(misc.INT, "tick_budget", "2000", "")
	parser.AddOption(misc.INT, "verbose", "0", "")
	parser.AddOption(misc.STRING, "out_filepath", "", "")
	parser.Parse([]string{"npusim", "--data_dirpath", dirpath, "--num_images", "1"})

	simulator_ := new(Simulator)
	simulator_.Init(parser)
	for i := 0; !simulator_.IsFinished(); i++ {
		if i > 4000 {
			t.Fatalf("simulator still running after %d cycles", i)
		}
		simulator_.Cycle()
	}

	platform := simulator_.platform.(*BatchPlatform)
	if len(platform.Predictions()) != 1 || platform.Predictions()[0] != 7 {
		t.Fatalf("predictions = %v, want [7]", platform.Predictions())
	}

	simulator_.Fini()
}
