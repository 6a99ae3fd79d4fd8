// Package fixture replays recorded recognition cases against a grammar and
// compares the results to expectations. Used for regression-testing compiled
// grammars without re-running the grammar compiler.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openvoiceinfra/fstintent/internal/decode"
	"github.com/openvoiceinfra/fstintent/internal/fst"
	"github.com/openvoiceinfra/fstintent/internal/store"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a recognition fixture.
type Fixture struct {
	Description string       `json:"description"`
	Grammar     GrammarFiles `json:"grammar"`
	Options     OptionsSpec  `json:"options"`
	Cases       []Case       `json:"cases"`
}

// GrammarFiles points at the grammar's AT&T text files, relative to the
// fixture file unless absolute.
type GrammarFiles struct {
	Name     string `json:"name"`
	Fst      string `json:"fst"`
	ISymbols string `json:"isymbols"`
	OSymbols string `json:"osymbols"`
}

// OptionsSpec mirrors the recognizer options with JSON tags.
type OptionsSpec struct {
	IntentName  string `json:"intent_name"`
	DontReplace bool   `json:"dont_replace"`
}

// Case pairs one input sentence with its expected intents.
type Case struct {
	Sentence string          `json:"sentence"`
	Expected []decode.Intent `json:"expected"`
}

// #endregion fixture-types

// #region load

// Load reads a fixture file and resolves its grammar paths.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if fx.Grammar.Fst == "" || fx.Grammar.ISymbols == "" || fx.Grammar.OSymbols == "" {
		return Fixture{}, fmt.Errorf("fixture %s: grammar fst, isymbols and osymbols are all required", path)
	}
	if len(fx.Cases) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s lists no cases", path)
	}

	base := filepath.Dir(path)
	fx.Grammar.Fst = resolve(base, fx.Grammar.Fst)
	fx.Grammar.ISymbols = resolve(base, fx.Grammar.ISymbols)
	fx.Grammar.OSymbols = resolve(base, fx.Grammar.OSymbols)
	return fx, nil
}

// LoadGrammar reads the fixture's grammar files into an Fst.
func (fx Fixture) LoadGrammar() (*fst.Fst, error) {
	return store.LoadEntry(store.ManifestEntry{
		Name:     fx.Grammar.Name,
		Fst:      fx.Grammar.Fst,
		ISymbols: fx.Grammar.ISymbols,
		OSymbols: fx.Grammar.OSymbols,
	})
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// #endregion load
