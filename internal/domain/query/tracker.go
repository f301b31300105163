package query

import "sync"

// Ticket identifies one fetch issued for a parameter snapshot.
type Ticket struct {
	Generation uint64
	Params     Parameters
}

// Tracker hands out tickets so that a response arriving after the query has
// changed (or after a newer fetch was issued) can be recognised and dropped.
type Tracker struct {
	mu         sync.Mutex
	generation uint64
}

// Begin issues a ticket for a fetch of params. Any earlier ticket becomes stale.
func (t *Tracker) Begin(params Parameters) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	return Ticket{Generation: t.generation, Params: params}
}

// Invalidate marks every outstanding ticket stale. Call it whenever the query changes.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
}

// IsCurrent reports whether a response for ticket may still be applied.
func (t *Tracker) IsCurrent(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ticket.Generation == t.generation
}

// Generation returns the latest generation number.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.generation
}
