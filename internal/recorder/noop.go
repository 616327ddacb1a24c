package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordResolution(_ *ResolutionEvent) error { return nil }
func (n *NoopRecorder) History(_ int) ([]ResolutionEvent, error)  { return nil, nil }
func (n *NoopRecorder) Close() error                              { return nil }
