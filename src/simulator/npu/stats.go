package npu

// Stats records per-pipeline tick counters.
type Stats struct {
	Inferences     int64
	TotalTicks     int64
	IdleTicks      int64
	LoadTicks      int64
	Layer1Ticks    int64
	ActivateTicks  int64
	Layer2Ticks    int64
	ArgmaxTicks    int64
	MacOperations  int64
	RejectedStarts int64
}

func (s *Stats) Reset() {
	*s = Stats{}
}

func (s *Stats) Accumulate(other Stats) {
	s.Inferences += other.Inferences
	s.TotalTicks += other.TotalTicks
	s.IdleTicks += other.IdleTicks
	s.LoadTicks += other.LoadTicks
	s.Layer1Ticks += other.Layer1Ticks
	s.ActivateTicks += other.ActivateTicks
	s.Layer2Ticks += other.Layer2Ticks
	s.ArgmaxTicks += other.ArgmaxTicks
	s.MacOperations += other.MacOperations
	s.RejectedStarts += other.RejectedStarts
}

func (s *Stats) observe(sigs ControlSignals) {
	s.TotalTicks++
	switch sigs.Phase {
	case PhaseIdle:
		s.IdleTicks++
	case PhaseLoadImage:
		s.LoadTicks++
	case PhaseLayer1Compute:
		s.Layer1Ticks++
	case PhaseLayer1Activate:
		s.ActivateTicks++
	case PhaseLayer2Compute:
		s.Layer2Ticks++
	case PhaseArgmax:
		s.ArgmaxTicks++
	}
	if sigs.Layer1Enable {
		s.MacOperations += HiddenSize
	}
	if sigs.Layer2Enable {
		s.MacOperations += OutputSize
	}
}
