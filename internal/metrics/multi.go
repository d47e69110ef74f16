package metrics

// MultiSink fans out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Combine returns NopSink, the single sink, or a MultiSink.
func Combine(sinks ...Sink) Sink {
	switch len(sinks) {
	case 0:
		return NopSink{}
	case 1:
		return sinks[0]
	default:
		return NewMultiSink(sinks...)
	}
}

// RecordIngested forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordIngested(action string) error {
	for _, s := range m.Sinks {
		if err := s.RecordIngested(action); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSnapshot(result string, active int) error {
	for _, s := range m.Sinks {
		if err := s.RecordSnapshot(result, active); err != nil {
			return err
		}
	}
	return nil
}

// RecordPoll forwards to sinks that support it.
func (m *MultiSink) RecordPoll(dashboard, outcome string, added int) error {
	for _, s := range m.Sinks {
		if pr, ok := s.(PollRecorder); ok {
			if err := pr.RecordPoll(dashboard, outcome, added); err != nil {
				return err
			}
		}
	}
	return nil
}
