// Package recognize ties acceptor construction, grammar composition, path
// enumeration and symbol decoding together into per-sentence intent
// recognition.
package recognize

import (
	"fmt"
	"log"
	"strings"

	"github.com/openvoiceinfra/fstintent/internal/decode"
	"github.com/openvoiceinfra/fstintent/internal/fst"
	"github.com/openvoiceinfra/fstintent/internal/logging"
)

// #region options

// Options controls one recognizer instance.
type Options struct {
	// IntentName, when non-empty, overrides __label__ markers in the grammar.
	IntentName string
	// ReplaceTags enables the TAG:REPLACE convention: a tag named
	// "city:Boston" emits value "Boston" instead of the matched tokens.
	ReplaceTags bool
}

// Sink receives per-sentence outcomes for the persistent side-channel log.
// Sink failures never affect recognition results.
type Sink interface {
	Record(entry logging.RecognitionEntry) error
}

// #endregion options

// #region recognizer

// Recognizer matches sentences against one compiled grammar. The grammar is
// shared read-only; everything else is created per call, so a Recognizer is
// safe for concurrent use.
type Recognizer struct {
	grammar *fst.Fst
	name    string
	opts    Options
	sink    Sink
}

// New creates a recognizer for a named grammar.
func New(name string, grammar *fst.Fst, opts Options) *Recognizer {
	return &Recognizer{grammar: grammar, name: name, opts: opts}
}

// SetSink attaches a persistent recognition log. sink may be nil.
func (r *Recognizer) SetSink(sink Sink) {
	r.sink = sink
}

// #endregion recognizer

// #region tokenize

// Tokenize normalizes a raw sentence: trim, lowercase, split on whitespace
// runs. Empty and whitespace-only input yields zero tokens (not one empty
// token), so such a sentence only matches grammars accepting the empty
// string.
func Tokenize(sentence string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(sentence)))
}

// #endregion tokenize

// #region recognize

// Recognize matches one sentence and returns every parse, with probability
// mass split uniformly across them. No accepting path is not an error: the
// result is simply empty. Errors mean the attempt itself failed (malformed
// tag nesting, symbol table inconsistency, cyclic grammar).
func (r *Recognizer) Recognize(sentence string) ([]decode.Intent, error) {
	tokens := Tokenize(sentence)

	acceptor := fst.LinearAcceptor(tokens, r.grammar.InputSymbols())
	composed := fst.Compose(acceptor, r.grammar)
	composed.ProjectOutput()

	paths, err := fst.EnumeratePaths(composed, fst.AllSymbols)
	if err != nil {
		return nil, fmt.Errorf("enumerate paths: %w", err)
	}

	intents := make([]decode.Intent, 0, len(paths))
	for _, path := range paths {
		intent, err := decode.Decode(path, r.opts.IntentName, r.opts.ReplaceTags)
		if err != nil {
			return nil, fmt.Errorf("decode path: %w", err)
		}
		intents = append(intents, intent)
	}

	// Uniform ambiguity split across all parses of this sentence.
	for i := range intents {
		intents[i].Intent.Confidence /= float64(len(intents))
	}
	return intents, nil
}

// #endregion recognize

// #region batch

// RecognizeBatch runs every sentence independently and never returns an
// error: a sentence whose attempt fails maps to an empty list and the
// failure goes to the side-channel log. Failures here are deterministic, so
// there is no retry.
func (r *Recognizer) RecognizeBatch(sentences []string) map[string][]decode.Intent {
	results := make(map[string][]decode.Intent, len(sentences))
	for _, sentence := range sentences {
		intents, err := r.Recognize(sentence)
		if err != nil {
			log.Printf("recognize %q: %v", sentence, err)
			intents = []decode.Intent{}
		}
		if intents == nil {
			intents = []decode.Intent{}
		}
		results[sentence] = intents
		r.record(sentence, intents, err)
	}
	return results
}

// record writes one outcome to the sink, best effort.
func (r *Recognizer) record(sentence string, intents []decode.Intent, attemptErr error) {
	if r.sink == nil {
		return
	}
	entry := logging.RecognitionEntry{
		Grammar:   r.name,
		Sentence:  sentence,
		PathCount: len(intents),
	}
	if attemptErr != nil {
		entry.ErrReason = attemptErr.Error()
	} else if len(intents) > 0 {
		entry.Intent = intents[0].Intent.Name
		entry.Confidence = intents[0].Intent.Confidence
	}
	if err := r.sink.Record(entry); err != nil {
		log.Printf("recognition log: %v", err)
	}
}

// #endregion batch
