package events

import "time"

// Event is the context handed to middleware and subscribers during an
// emission.
type Event struct {
	ID        string
	Name      string
	Timestamp time.Time
	Payload   any
}

// Record is one entry in the bus history log. A record is appended when
// an emission attempt begins; TransformedPayload and CompletedAt are
// filled in only if the attempt passes every middleware and transformer.
type Record struct {
	ID                 string
	Name               string
	Timestamp          time.Time
	Payload            any
	TransformedPayload any
	CompletedAt        time.Time
}

// Completed reports whether the emission this record tracks ran to
// completion.
func (r Record) Completed() bool {
	return !r.CompletedAt.IsZero()
}
