// Package facematch scores an encounter photo against a member's reference
// photo. The production implementation calls an external similarity service
// over HTTP; StaticScorer exists for development and tests.
package facematch

import (
	"context"
)

// Result is the outcome of a similarity comparison. Confidence is in the
// range [0, 1].
type Result struct {
	IsMatch    bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
}

// Scorer compares the sample photo against the reference photo at
// referenceURL.
type Scorer interface {
	Compare(ctx context.Context, referenceURL string, sample []byte) (Result, error)
}

// StaticScorer returns a fixed result for every comparison. Useful in
// development environments without access to the similarity service.
type StaticScorer struct {
	Result Result
	Err    error
}

func (s StaticScorer) Compare(context.Context, string, []byte) (Result, error) {
	if s.Err != nil {
		return Result{}, s.Err
	}
	return s.Result, nil
}
