package npu

import "fmt"

// Layer selects one of the two parameter tables held by the store.
type Layer int

const (
	LayerHidden Layer = iota + 1
	LayerOutput
)

func (l Layer) String() string {
	switch l {
	case LayerHidden:
		return "hidden"
	case LayerOutput:
		return "output"
	default:
		return fmt.Sprintf("invalid(%d)", int(l))
	}
}

// WeightStore holds the read-only parameter tables. Lookups complete in the
// same step; rows are addressed by the layer's base offset (row*32 for the
// hidden layer, row*10 for the output layer). The tables are copied at
// construction and never mutated afterwards.
type WeightStore struct {
	w1 []int8 // [InputSize][HiddenSize], row-major
	b1 []int8
	w2 []int8 // [HiddenSize][OutputSize], row-major
	b2 []int8
}

// NewWeightStore validates the supplied table sizes against the fixed layer
// dimensions and fails fast on any mismatch.
func NewWeightStore(w1, b1, w2, b2 []int8) (*WeightStore, error) {
	if len(w1) != InputSize*HiddenSize {
		return nil, fmt.Errorf("layer-1 weights: expected %d values, got %d", InputSize*HiddenSize, len(w1))
	}
	if len(b1) != HiddenSize {
		return nil, fmt.Errorf("layer-1 biases: expected %d values, got %d", HiddenSize, len(b1))
	}
	if len(w2) != HiddenSize*OutputSize {
		return nil, fmt.Errorf("layer-2 weights: expected %d values, got %d", HiddenSize*OutputSize, len(w2))
	}
	if len(b2) != OutputSize {
		return nil, fmt.Errorf("layer-2 biases: expected %d values, got %d", OutputSize, len(b2))
	}

	store := &WeightStore{
		w1: append([]int8(nil), w1...),
		b1: append([]int8(nil), b1...),
		w2: append([]int8(nil), w2...),
		b2: append([]int8(nil), b2...),
	}
	return store, nil
}

// Width returns the lane count of the selected layer.
func (s *WeightStore) Width(layer Layer) int {
	switch layer {
	case LayerHidden:
		return HiddenSize
	case LayerOutput:
		return OutputSize
	default:
		panic(fmt.Sprintf("weight store: unknown layer %s", layer))
	}
}

// Depth returns the number of addressable rows of the selected layer.
func (s *WeightStore) Depth(layer Layer) int {
	switch layer {
	case LayerHidden:
		return InputSize
	case LayerOutput:
		return HiddenSize
	default:
		panic(fmt.Sprintf("weight store: unknown layer %s", layer))
	}
}

// WeightRow returns the per-lane weight slice for the given row. An
// out-of-range row never occurs under a correct FSM; hitting one is a
// programming error and panics.
func (s *WeightStore) WeightRow(layer Layer, row int) []int8 {
	depth := s.Depth(layer)
	if row < 0 || row >= depth {
		panic(fmt.Sprintf("weight store: row %d out of range for %s layer (depth %d)", row, layer, depth))
	}

	width := s.Width(layer)
	base := row * width
	switch layer {
	case LayerHidden:
		return s.w1[base : base+width]
	default:
		return s.w2[base : base+width]
	}
}

// Biases returns the full bias vector of the selected layer.
func (s *WeightStore) Biases(layer Layer) []int8 {
	switch layer {
	case LayerHidden:
		return s.b1
	case LayerOutput:
		return s.b2
	default:
		panic(fmt.Sprintf("weight store: unknown layer %s", layer))
	}
}
