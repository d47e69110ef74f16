package metrics

// Snapshot results.
const (
	SnapshotOK        = "ok"
	SnapshotNoContent = "no_content"
)

// Poll outcomes reported by dashboards.
const (
	PollOK        = "ok"
	PollNoContent = "no_content"
	PollError     = "error"
)

// Sink records server-side dispatch activity.
type Sink interface {
	RecordIngested(action string) error
	RecordSnapshot(result string, active int) error
}

// PollRecorder records reconciler round-trips. Sinks implement it optionally.
type PollRecorder interface {
	RecordPoll(dashboard, outcome string, added int) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordIngested(string) error          { return nil }
func (NopSink) RecordSnapshot(string, int) error     { return nil }
func (NopSink) RecordPoll(string, string, int) error { return nil }
