package domain

// Table names the stream an envelope belongs to.
type Table string

const (
	// TableConfiguration carries the one-off process/topology/schema dump.
	TableConfiguration Table = "configuration"
	// TableHistory carries one emit-flagged snapshot per completed tick.
	TableHistory Table = "history"
)

// KeyTime is the key under which history data records simulated time.
const KeyTime = "time"

// Envelope is the unit pushed to emitters.
type Envelope struct {
	Table        Table          `json:"table"`
	ExperimentID string         `json:"experiment_id,omitempty"`
	Data         map[string]any `json:"data"`
}

// Time returns the simulated time recorded in a history envelope.
func (e Envelope) Time() (float64, bool) {
	t, ok := e.Data[KeyTime].(float64)
	return t, ok
}
