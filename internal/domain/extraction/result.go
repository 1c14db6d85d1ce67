package extraction

import (
	"github.com/google/uuid"

	"github.com/yungbote/researchtrack-backend/internal/domain/programs"
)

// Entity names used in failures and metrics.
const (
	EntityProgram  = "program"
	EntityDeadline = "deadline"
	EntityPerson   = "person"
	EntityLink     = "link"
)

// FailureKind says why a candidate row is absent from the result.
type FailureKind string

const (
	// FailureMalformed: the candidate failed field validation.
	FailureMalformed FailureKind = "malformed"
	// FailurePersistence: the insert (or its program's commit) failed.
	FailurePersistence FailureKind = "persistence"
	// FailureParentMissing: the child's program was not persisted.
	FailureParentMissing FailureKind = "parent_missing"
	// FailureUnmatched: no program in the batch carries the child's program_title.
	FailureUnmatched FailureKind = "unmatched"
	// FailureDuplicateTitle: an earlier program in the batch already owns this title,
	// so this program was persisted without children.
	FailureDuplicateTitle FailureKind = "duplicate_title"
)

type Failure struct {
	Entity       string      `json:"entity"`
	Title        string      `json:"title"`
	ProgramTitle string      `json:"programTitle,omitempty"`
	Kind         FailureKind `json:"kind"`
	Reason       string      `json:"reason,omitempty"`
}

// Result is what one extraction batch actually wrote. Partial is true whenever any
// candidate was skipped, so "nothing found" and "some rows failed" are distinguishable.
type Result struct {
	BatchID     uuid.UUID            `json:"batchId"`
	Programs    []*programs.Program  `json:"programs"`
	Deadlines   []*programs.Deadline `json:"deadlines"`
	People      []*programs.Person   `json:"people"`
	Links       []*programs.Link     `json:"links"`
	RawResponse string               `json:"rawResponse"`
	Partial     bool                 `json:"partial"`
	Failures    []Failure            `json:"failures"`
}

func NewResult(batchID uuid.UUID, raw string) *Result {
	return &Result{
		BatchID:     batchID,
		Programs:    []*programs.Program{},
		Deadlines:   []*programs.Deadline{},
		People:      []*programs.Person{},
		Links:       []*programs.Link{},
		RawResponse: raw,
		Failures:    []Failure{},
	}
}

func (r *Result) AddFailure(f Failure) {
	r.Failures = append(r.Failures, f)
	r.Partial = true
}
