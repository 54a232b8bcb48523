package store

// Recorder is the write side a running composition reports to. Batch
// buffers in memory; Store.CommitBatch persists a finished Batch.
type Recorder interface {
	AddOutcome(o MemberOutcome) int64
	AddRegistration(r Registration) int64
}

// Compile-time check: *Batch satisfies Recorder.
var _ Recorder = (*Batch)(nil)
