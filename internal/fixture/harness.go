package fixture

import (
	"fmt"
	"math"

	"github.com/openvoiceinfra/fstintent/internal/decode"
	"github.com/openvoiceinfra/fstintent/internal/recognize"
)

// confidenceTolerance absorbs float division noise when comparing the
// uniform ambiguity split.
const confidenceTolerance = 1e-9

// #region result-types

// CaseResult captures the outcome of replaying one case.
type CaseResult struct {
	Sentence string
	Passed   bool
	Reason   string
	Got      []decode.Intent
}

// Summary provides aggregate stats from a fixture run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion result-types

// #region run

// Run replays every case through the recognizer and compares against the
// fixture's expectations. Recognition failures count as a mismatch against
// any non-empty expectation, mirroring batch semantics.
func Run(fx Fixture, rec *recognize.Recognizer) ([]CaseResult, Summary) {
	results := make([]CaseResult, 0, len(fx.Cases))
	summary := Summary{Total: len(fx.Cases)}

	for _, c := range fx.Cases {
		intents, err := rec.Recognize(c.Sentence)
		if err != nil {
			intents = []decode.Intent{}
		}

		result := CaseResult{Sentence: c.Sentence, Got: intents}
		if reason := compare(c.Expected, intents); reason == "" {
			result.Passed = true
			summary.Passed++
		} else {
			result.Reason = reason
			summary.Failed++
		}
		results = append(results, result)
	}

	return results, summary
}

// compare reports the first difference between expected and got, or "".
func compare(expected, got []decode.Intent) string {
	if len(expected) != len(got) {
		return fmt.Sprintf("want %d intents, got %d", len(expected), len(got))
	}
	for i := range expected {
		want, have := expected[i], got[i]
		if want.Text != have.Text {
			return fmt.Sprintf("intent %d: want text %q, got %q", i, want.Text, have.Text)
		}
		if want.Intent.Name != have.Intent.Name {
			return fmt.Sprintf("intent %d: want name %q, got %q", i, want.Intent.Name, have.Intent.Name)
		}
		if math.Abs(want.Intent.Confidence-have.Intent.Confidence) > confidenceTolerance {
			return fmt.Sprintf("intent %d: want confidence %g, got %g", i, want.Intent.Confidence, have.Intent.Confidence)
		}
		if len(want.Entities) != len(have.Entities) {
			return fmt.Sprintf("intent %d: want %d entities, got %d", i, len(want.Entities), len(have.Entities))
		}
		for j := range want.Entities {
			if want.Entities[j] != have.Entities[j] {
				return fmt.Sprintf("intent %d entity %d: want %+v, got %+v", i, j, want.Entities[j], have.Entities[j])
			}
		}
	}
	return ""
}

// #endregion run
