package oracle

import (
	"errors"
	"testing"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	v, err := ParseVerdict(`{"status":"Approved","final_payout":120.50,"reason":"All services covered"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != StatusApproved {
		t.Errorf("got status %q", v.Status)
	}
	if v.FinalPayout != 120.50 {
		t.Errorf("got payout %f", v.FinalPayout)
	}
	if v.Reason != "All services covered" {
		t.Errorf("got reason %q", v.Reason)
	}
}

func TestParseVerdict_WrappedInProse(t *testing.T) {
	raw := "Here is my assessment:\n```json\n{\"status\":\"Rejected\",\"final_payout\":0,\"reason\":\"Diagnosis does not match procedures\"}\n```\nLet me know if you need anything else."
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != StatusRejected {
		t.Errorf("got status %q", v.Status)
	}
}

func TestParseVerdict_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json", "I cannot process this claim."},
		{"invalid json", "{status: Approved}"},
		{"unknown status", `{"status":"Maybe","final_payout":10,"reason":"r"}`},
		{"negative payout", `{"status":"Approved","final_payout":-5,"reason":"r"}`},
		{"missing reason", `{"status":"Approved","final_payout":10}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVerdict(tc.raw)
			if !errors.Is(err, ErrMalformedVerdict) {
				t.Errorf("expected ErrMalformedVerdict, got %v", err)
			}
		})
	}
}

func TestVerdictValidate(t *testing.T) {
	for _, status := range []string{StatusApproved, StatusFlagged, StatusRejected} {
		v := Verdict{Status: status, FinalPayout: 0, Reason: "ok"}
		if err := v.Validate(); err != nil {
			t.Errorf("status %q: unexpected error %v", status, err)
		}
	}
}
