package lifecycle

import (
	"fmt"

	"github.com/HendryAvila/decree/internal/adr"
)

// InvalidTransitionError reports a transition the state machine forbids.
// The record is left unchanged.
type InvalidTransitionError struct {
	ADRID string
	From  adr.Status
	To    adr.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %q to %q", e.ADRID, e.From, e.To)
}

// TamperDetectedError reports a sealed record whose content no longer
// matches its stored digest. Every dependent write is aborted before
// any side effect — a tampered decision must be restored (or formally
// superseded) before the pipeline will touch it again.
type TamperDetectedError struct {
	ADRID    string
	Stored   string
	Computed string
}

func (e *TamperDetectedError) Error() string {
	return fmt.Sprintf(
		"%s: content digest mismatch (stored %.12s..., computed %.12s...): "+
			"the record was edited after acceptance; restore the original content or supersede it",
		e.ADRID, e.Stored, e.Computed)
}
