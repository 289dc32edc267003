// Package oracle adjudicates enriched claims. The production implementation
// sends the claim to Claude and parses the structured verdict out of the
// response; StaticAssessor exists for development and tests.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Verdict statuses. Commit code lowercases these before persisting.
const (
	StatusApproved = "Approved"
	StatusFlagged  = "Flagged"
	StatusRejected = "Rejected"
)

// ErrMalformedVerdict indicates the assessment response could not be parsed
// into a valid verdict.
var ErrMalformedVerdict = errors.New("malformed assessment verdict")

// Verdict is the adjudication outcome for one claim.
type Verdict struct {
	Status      string  `json:"status"`
	FinalPayout float64 `json:"final_payout"`
	Reason      string  `json:"reason"`
}

// Validate checks that the verdict carries a known status and a non-negative
// payout.
func (v Verdict) Validate() error {
	switch v.Status {
	case StatusApproved, StatusFlagged, StatusRejected:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrMalformedVerdict, v.Status)
	}
	if v.FinalPayout < 0 {
		return fmt.Errorf("%w: negative payout %f", ErrMalformedVerdict, v.FinalPayout)
	}
	if v.Reason == "" {
		return fmt.Errorf("%w: missing reason", ErrMalformedVerdict)
	}
	return nil
}

// Assessor produces a verdict for an enriched claim document.
type Assessor interface {
	Assess(ctx context.Context, enrichedClaim []byte) (Verdict, error)
}

// StaticAssessor returns a fixed verdict for every claim.
type StaticAssessor struct {
	Verdict Verdict
	Err     error
}

func (s StaticAssessor) Assess(context.Context, []byte) (Verdict, error) {
	if s.Err != nil {
		return Verdict{}, s.Err
	}
	return s.Verdict, nil
}
