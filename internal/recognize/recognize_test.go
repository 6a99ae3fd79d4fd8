package recognize

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openvoiceinfra/fstintent/internal/decode"
	"github.com/openvoiceinfra/fstintent/internal/fst"
	"github.com/openvoiceinfra/fstintent/internal/logging"
)

// #region grammar-helpers

// chainStates appends n fresh states and returns them.
func chainStates(f *fst.Fst, n int) []int {
	states := make([]int, n)
	for i := range states {
		states[i] = f.AddState()
	}
	return states
}

// buildLightGrammar accepts exactly "turn on the light" and emits
// __label__light_on, no entities.
func buildLightGrammar(t *testing.T) *fst.Fst {
	t.Helper()

	isyms := fst.NewSymbolTable()
	osyms := fst.NewSymbolTable()
	g := fst.New(isyms, osyms)

	words := []string{"turn", "on", "the", "light"}
	states := chainStates(g, len(words)+2)
	g.SetStart(states[0])
	for i, w := range words {
		g.AddArc(states[i], fst.Arc{
			ILabel: isyms.AddSymbol(w),
			OLabel: osyms.AddSymbol(w),
			Next:   states[i+1],
		})
	}
	g.AddArc(states[len(words)], fst.Arc{
		ILabel: fst.Epsilon,
		OLabel: osyms.AddSymbol("__label__light_on"),
		Next:   states[len(words)+1],
	})
	g.SetFinal(states[len(words)+1], 0)

	return g
}

// buildArtistGrammar accepts "play prince" with the artist tagged and a
// __label__play_artist marker.
func buildArtistGrammar(t *testing.T) *fst.Fst {
	t.Helper()

	isyms := fst.NewSymbolTable()
	osyms := fst.NewSymbolTable()
	g := fst.New(isyms, osyms)

	states := chainStates(g, 6)
	g.SetStart(states[0])
	g.AddArc(states[0], fst.Arc{ILabel: isyms.AddSymbol("play"), OLabel: osyms.AddSymbol("play"), Next: states[1]})
	g.AddArc(states[1], fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol("__begin__artist"), Next: states[2]})
	g.AddArc(states[2], fst.Arc{ILabel: isyms.AddSymbol("prince"), OLabel: osyms.AddSymbol("prince"), Next: states[3]})
	g.AddArc(states[3], fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol("__end__artist"), Next: states[4]})
	g.AddArc(states[4], fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol("__label__play_artist"), Next: states[5]})
	g.SetFinal(states[5], 0)

	return g
}

// buildAmbiguousGrammar accepts "play prince" along two distinct paths with
// different intent labels.
func buildAmbiguousGrammar(t *testing.T) *fst.Fst {
	t.Helper()

	isyms := fst.NewSymbolTable()
	osyms := fst.NewSymbolTable()
	g := fst.New(isyms, osyms)

	play := isyms.AddSymbol("play")
	prince := isyms.AddSymbol("prince")
	oPlay := osyms.AddSymbol("play")
	oPrince := osyms.AddSymbol("prince")

	start := g.AddState()
	g.SetStart(start)
	for _, label := range []string{"__label__play_artist", "__label__play_music"} {
		s1, s2, s3 := g.AddState(), g.AddState(), g.AddState()
		g.AddArc(start, fst.Arc{ILabel: play, OLabel: oPlay, Next: s1})
		g.AddArc(s1, fst.Arc{ILabel: prince, OLabel: oPrince, Next: s2})
		g.AddArc(s2, fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol(label), Next: s3})
		g.SetFinal(s3, 0)
	}

	return g
}

// buildBrokenGrammar emits mismatched tag markers on its only path.
func buildBrokenGrammar(t *testing.T) *fst.Fst {
	t.Helper()

	isyms := fst.NewSymbolTable()
	osyms := fst.NewSymbolTable()
	g := fst.New(isyms, osyms)

	states := chainStates(g, 4)
	g.SetStart(states[0])
	g.AddArc(states[0], fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol("__begin__artist"), Next: states[1]})
	g.AddArc(states[1], fst.Arc{ILabel: isyms.AddSymbol("prince"), OLabel: osyms.AddSymbol("prince"), Next: states[2]})
	g.AddArc(states[2], fst.Arc{ILabel: fst.Epsilon, OLabel: osyms.AddSymbol("__end__city"), Next: states[3]})
	g.SetFinal(states[3], 0)

	return g
}

// #endregion grammar-helpers

// #region test-tokenize
func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Turn On The Light", []string{"turn", "on", "the", "light"}},
		{"  play   prince ", []string{"play", "prince"}},
		{"", []string{}},
		{"   \t  ", []string{}},
	}
	for _, c := range cases {
		got := Tokenize(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// #endregion test-tokenize

// #region test-recognize
func TestRecognizeLightOn(t *testing.T) {
	rec := New("light", buildLightGrammar(t), Options{ReplaceTags: true})

	intents, err := rec.Recognize("Turn On The Light")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}

	want := []decode.Intent{{
		Text:     "turn on the light",
		Intent:   decode.IntentMeta{Name: "light_on", Confidence: 1},
		Entities: []decode.Entity{},
		Tokens:   []string{"turn", "on", "the", "light"},
	}}
	if diff := cmp.Diff(want, intents); diff != "" {
		t.Errorf("intents mismatch (-want +got):\n%s", diff)
	}
}

func TestRecognizeTaggedArtist(t *testing.T) {
	rec := New("music", buildArtistGrammar(t), Options{ReplaceTags: true})

	intents, err := rec.Recognize("play prince")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	got := intents[0]
	if got.Intent.Name != "play_artist" || got.Intent.Confidence != 1 {
		t.Errorf("intent: %+v", got.Intent)
	}
	want := []decode.Entity{{Entity: "artist", Value: "prince"}}
	if !reflect.DeepEqual(got.Entities, want) {
		t.Errorf("entities = %+v, want %+v", got.Entities, want)
	}
}

func TestRecognizeIntentOverride(t *testing.T) {
	rec := New("music", buildArtistGrammar(t), Options{IntentName: "custom", ReplaceTags: true})

	intents, err := rec.Recognize("play prince")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if intents[0].Intent.Name != "custom" {
		t.Errorf("override ignored: %q", intents[0].Intent.Name)
	}
}

func TestRecognizeAmbiguousSplitsConfidence(t *testing.T) {
	rec := New("music", buildAmbiguousGrammar(t), Options{ReplaceTags: true})

	intents, err := rec.Recognize("play prince")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("expected 2 parses, got %d", len(intents))
	}

	sum := 0.0
	for _, in := range intents {
		if math.Abs(in.Intent.Confidence-0.5) > 1e-9 {
			t.Errorf("confidence = %v, want 0.5", in.Intent.Confidence)
		}
		sum += in.Intent.Confidence
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("confidence mass = %v, want 1", sum)
	}

	names := []string{intents[0].Intent.Name, intents[1].Intent.Name}
	if !reflect.DeepEqual(names, []string{"play_artist", "play_music"}) {
		t.Errorf("parse order not deterministic: %v", names)
	}
}

func TestRecognizeNoMatch(t *testing.T) {
	rec := New("light", buildLightGrammar(t), Options{ReplaceTags: true})

	intents, err := rec.Recognize("play prince")
	if err != nil {
		t.Fatalf("no match must not be an error: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("expected no intents, got %+v", intents)
	}
}

func TestRecognizeEmptySentence(t *testing.T) {
	rec := New("light", buildLightGrammar(t), Options{ReplaceTags: true})

	for _, sentence := range []string{"", "   "} {
		intents, err := rec.Recognize(sentence)
		if err != nil {
			t.Fatalf("recognize %q: %v", sentence, err)
		}
		if len(intents) != 0 {
			t.Errorf("recognize %q: expected empty result, got %+v", sentence, intents)
		}
	}
}

func TestRecognizeDeterministic(t *testing.T) {
	rec := New("music", buildAmbiguousGrammar(t), Options{ReplaceTags: true})

	first, err := rec.Recognize("play prince")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := rec.Recognize("play prince")
		if err != nil {
			t.Fatalf("recognize run %d: %v", i, err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestRecognizeMalformedTags(t *testing.T) {
	rec := New("broken", buildBrokenGrammar(t), Options{ReplaceTags: true})

	if _, err := rec.Recognize("prince"); err == nil {
		t.Fatal("expected decode error for mismatched tags")
	}
}

// #endregion test-recognize

// #region test-batch
func TestRecognizeBatchIsolatesFailures(t *testing.T) {
	rec := New("broken", buildBrokenGrammar(t), Options{ReplaceTags: true})

	results := rec.RecognizeBatch([]string{"prince", "unrelated words"})
	if len(results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(results))
	}
	for sentence, intents := range results {
		if intents == nil {
			t.Errorf("%q: result must be an empty list, not nil", sentence)
		}
		if len(intents) != 0 {
			t.Errorf("%q: expected empty result, got %+v", sentence, intents)
		}
	}
}

func TestRecognizeBatchResults(t *testing.T) {
	rec := New("light", buildLightGrammar(t), Options{ReplaceTags: true})

	results := rec.RecognizeBatch([]string{"turn on the light", "play prince"})
	if got := len(results["turn on the light"]); got != 1 {
		t.Errorf("matching sentence: %d intents", got)
	}
	if got := len(results["play prince"]); got != 0 {
		t.Errorf("non-matching sentence: %d intents", got)
	}
}

// #endregion test-batch

// #region test-sink
type captureSink struct {
	entries []logging.RecognitionEntry
}

func (c *captureSink) Record(entry logging.RecognitionEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func TestRecognizeBatchRecordsToSink(t *testing.T) {
	rec := New("light", buildLightGrammar(t), Options{ReplaceTags: true})
	sink := &captureSink{}
	rec.SetSink(sink)

	rec.RecognizeBatch([]string{"turn on the light", "play prince"})
	if len(sink.entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(sink.entries))
	}
	for _, e := range sink.entries {
		if e.Grammar != "light" {
			t.Errorf("entry grammar = %q", e.Grammar)
		}
		switch e.Sentence {
		case "turn on the light":
			if e.PathCount != 1 || e.Intent != "light_on" {
				t.Errorf("matched entry: %+v", e)
			}
		case "play prince":
			if e.PathCount != 0 || e.Intent != "" {
				t.Errorf("unmatched entry: %+v", e)
			}
		default:
			t.Errorf("unexpected sentence %q", e.Sentence)
		}
	}
}

func TestRecognizeBatchRecordsFailure(t *testing.T) {
	rec := New("broken", buildBrokenGrammar(t), Options{ReplaceTags: true})
	sink := &captureSink{}
	rec.SetSink(sink)

	rec.RecognizeBatch([]string{"prince"})
	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(sink.entries))
	}
	if sink.entries[0].ErrReason == "" {
		t.Error("failed attempt must carry an error reason")
	}
}

// #endregion test-sink
