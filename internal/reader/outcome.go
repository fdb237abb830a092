package reader

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the per-file result of one read attempt: either decoded content
// or a structured error, plus the file metadata and the format of the run.
// Err == nil means success.
type Outcome struct {
	Name         string     `json:"name"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"lastModified,omitempty"`
	MimeType     string     `json:"mimeType"`
	Format       Format     `json:"dataFormat"`
	Data         string     `json:"data,omitempty"`
	Err          *ErrorInfo `json:"error,omitempty"`
}

func (o Outcome) Failed() bool { return o.Err != nil }

// Batch accumulates the outcomes of one run, one slot per input file, in
// input order. It is filled exactly once per index, finalized at most once,
// and never mutated after finalization.
type Batch struct {
	RunID uuid.UUID

	outcomes  []Outcome
	settled   []bool
	remaining int
	finalized bool
}

func NewBatch(runID uuid.UUID, n int) *Batch {
	return &Batch{
		RunID:     runID,
		outcomes:  make([]Outcome, n),
		settled:   make([]bool, n),
		remaining: n,
	}
}

func (b *Batch) Len() int { return len(b.outcomes) }

// Append records the outcome for the file at input index i.
func (b *Batch) Append(i int, o Outcome) error {
	if b.finalized {
		return fmt.Errorf("append to finalized batch")
	}
	if i < 0 || i >= len(b.outcomes) {
		return fmt.Errorf("outcome index %d out of range [0,%d)", i, len(b.outcomes))
	}
	if b.settled[i] {
		return fmt.Errorf("outcome index %d appended twice", i)
	}
	b.outcomes[i] = o
	b.settled[i] = true
	b.remaining--
	return nil
}

// Finalize seals the batch. It may be called once, and only after every index
// has received its outcome.
func (b *Batch) Finalize() error {
	if b.finalized {
		return fmt.Errorf("batch finalized twice")
	}
	if b.remaining > 0 {
		return fmt.Errorf("finalize with %d of %d outcomes missing", b.remaining, len(b.outcomes))
	}
	b.finalized = true
	return nil
}

// Outcomes returns the outcome sequence in input order.
func (b *Batch) Outcomes() []Outcome { return b.outcomes }
