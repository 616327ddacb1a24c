package recorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolutionEvent is one rate resolution: a live fetch or a fallback.
type ResolutionEvent struct {
	ID                 string
	Timestamp          time.Time
	Source             string
	Degraded           bool // true when fallback constants were served
	Forced             bool
	Rates              map[string]decimal.Decimal
	FilledFromFallback []string
	Error              string
}

// Recorder persists rate resolution history for audit.
type Recorder interface {
	RecordResolution(evt *ResolutionEvent) error
	History(limit int) ([]ResolutionEvent, error)
	Close() error
}
