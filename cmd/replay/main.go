// replay runs a recognition fixture: a JSON file pairing sentences with
// their expected intents against a grammar, used to regression-test compiled
// grammars.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/openvoiceinfra/fstintent/internal/fixture"
	"github.com/openvoiceinfra/fstintent/internal/recognize"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output results as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -fixture path/to/fixture.json [-json]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *jsonOut))
}

// #endregion main

// #region run

// replayOutput is the JSON shape of a fixture run.
type replayOutput struct {
	Description string               `json:"description,omitempty"`
	Results     []fixture.CaseResult `json:"results"`
	Summary     fixture.Summary      `json:"summary"`
}

func run(fixturePath string, jsonOut bool) int {
	fx, err := fixture.Load(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	grammar, err := fx.LoadGrammar()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load grammar: %v\n", err)
		return 2
	}

	rec := recognize.New(fx.Grammar.Name, grammar, recognize.Options{
		IntentName:  fx.Options.IntentName,
		ReplaceTags: !fx.Options.DontReplace,
	})

	results, summary := fixture.Run(fx, rec)

	if jsonOut {
		out := replayOutput{Description: fx.Description, Results: results, Summary: summary}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode results: %v\n", err)
			return 2
		}
	} else {
		if fx.Description != "" {
			fmt.Printf("=== %s ===\n", fx.Description)
		}
		for _, r := range results {
			if r.Passed {
				fmt.Printf("  PASS  %q\n", r.Sentence)
			} else {
				fmt.Printf("  FAIL  %q: %s\n", r.Sentence, r.Reason)
			}
		}
		fmt.Printf("%d/%d cases passed.\n", summary.Passed, summary.Total)
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion run
