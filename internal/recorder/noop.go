package recorder

// NoopRecorder is used when no journal path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error { return nil }
func (n *NoopRecorder) RecordOrder(_ *OrderRecord) error { return nil }
func (n *NoopRecorder) Close() error                     { return nil }
