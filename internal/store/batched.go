package store

import "sync"

// Batch buffers one composition and everything recorded while it runs,
// using fake (negative) IDs until CommitBatch writes it.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type Batch struct {
	mu sync.Mutex

	Composition   Composition
	Outcomes      []MemberOutcome
	Registrations []Registration

	nextFakeID int64 // starts at -1, decrements
}

// NewBatch creates a Batch whose composition carries a fake ID.
func NewBatch(c Composition) *Batch {
	b := &Batch{Composition: c, nextFakeID: -1}
	b.Composition.ID = b.allocFakeID()
	return b
}

func (b *Batch) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

// AddOutcome buffers a member outcome for the batch's composition.
func (b *Batch) AddOutcome(o MemberOutcome) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	o.ID = b.allocFakeID()
	o.CompositionID = b.Composition.ID
	b.Outcomes = append(b.Outcomes, o)
	return o.ID
}

// AddRegistration buffers a registration for the batch's composition.
func (b *Batch) AddRegistration(r Registration) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	r.ID = b.allocFakeID()
	r.CompositionID = b.Composition.ID
	b.Registrations = append(b.Registrations, r)
	return r.ID
}

// Refused returns the buffered outcomes that were not installed.
func (b *Batch) Refused() []MemberOutcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []MemberOutcome
	for _, o := range b.Outcomes {
		if !o.Installed {
			out = append(out, o)
		}
	}
	return out
}
