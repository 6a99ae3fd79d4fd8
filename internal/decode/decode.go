// Package decode turns one output symbol sequence from a grammar path into a
// structured intent record. The symbol stream mixes literal tokens with
// control markers (__begin__, __end__, __label__); the marker vocabulary is
// the grammar file format's contract and is preserved bit-for-bit.
package decode

import (
	"errors"
	"fmt"
	"strings"
)

// #region markers

const (
	// EpsilonSymbol is skipped wherever it appears in a symbol stream.
	EpsilonSymbol = "<eps>"
	// BeginPrefix opens a tag; the remainder is the tag name, optionally
	// carrying a colon-separated replacement value (e.g. "city:Boston").
	BeginPrefix = "__begin__"
	// EndPrefix closes the currently open tag; the remainder must equal the
	// open tag's name exactly.
	EndPrefix = "__end__"
	// LabelPrefix declares the intent name for paths with no external name.
	LabelPrefix = "__label__"
)

// ErrTagMismatch reports malformed begin/end nesting on a single path.
var ErrTagMismatch = errors.New("mismatched tag markers")

// #endregion markers

// #region classify

type symKind int

const (
	symEpsilon symKind = iota
	symBegin
	symEnd
	symLabel
	symToken
)

// classify splits a symbol into its kind and payload (marker name, or the
// token itself).
func classify(sym string) (symKind, string) {
	switch {
	case sym == EpsilonSymbol:
		return symEpsilon, ""
	case strings.HasPrefix(sym, BeginPrefix):
		return symBegin, sym[len(BeginPrefix):]
	case strings.HasPrefix(sym, EndPrefix):
		return symEnd, sym[len(EndPrefix):]
	case strings.HasPrefix(sym, LabelPrefix):
		return symLabel, sym[len(LabelPrefix):]
	default:
		return symToken, sym
	}
}

// #endregion classify

// #region tag-state

// tagState is the decoder's explicit tagging state: Idle (open == false) or
// inside a named tag accumulating its literal tokens. Nested tags are not
// part of the grammar contract; a begin while open simply reopens.
type tagState struct {
	open   bool
	name   string
	buffer []string
}

// #endregion tag-state

// #region decode

// Decode interprets one path's symbols as an intent record. intentName, when
// non-empty, overrides any __label__ marker. replaceTags selects whether a
// colon-carrying tag name supplies the entity value, or the literal matched
// tokens do.
//
// Malformed tag nesting fails this single path; the caller decides sentence
// granularity.
func Decode(symbols []string, intentName string, replaceTags bool) (Intent, error) {
	intent := Empty()
	var tag tagState
	out := []string{}

	for _, sym := range symbols {
		kind, payload := classify(sym)
		switch kind {
		case symEpsilon:
			// skip

		case symBegin:
			tag = tagState{open: true, name: payload}

		case symEnd:
			if !tag.open || tag.name != payload {
				return Intent{}, fmt.Errorf("%w: open %q, closed %q", ErrTagMismatch, tag.name, payload)
			}
			entity := tag.name
			var value string
			if idx := strings.Index(tag.name, ":"); replaceTags && idx >= 0 {
				entity, value = tag.name[:idx], tag.name[idx+1:]
			} else {
				if idx := strings.Index(entity, ":"); idx >= 0 {
					entity = entity[:idx]
				}
				value = strings.Join(tag.buffer, " ")
			}
			intent.Entities = append(intent.Entities, Entity{Entity: entity, Value: value})
			tag = tagState{}

		case symLabel:
			if intentName == "" {
				intentName = payload
			}

		case symToken:
			if tag.open {
				tag.buffer = append(tag.buffer, payload)
			}
			out = append(out, payload)
		}
	}

	intent.Text = strings.Join(out, " ")
	intent.Tokens = out
	if len(out) > 0 {
		intent.Intent.Name = intentName
		intent.Intent.Confidence = 1
	}
	return intent, nil
}

// #endregion decode
