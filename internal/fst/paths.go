package fst

import (
	"fmt"
	"strings"
)

// #region path-mode

// PathMode selects which output symbols EnumeratePaths renders.
type PathMode int

const (
	// AllSymbols keeps every non-epsilon output symbol, tag markers
	// included. This is the mode the intent decoder consumes.
	AllSymbols PathMode = iota
	// LiteralOnly drops marker symbols (the reserved "__" prefix), leaving
	// the human-readable sentence.
	LiteralOnly
)

// metaPrefix marks control symbols embedded in grammar vocabularies
// (__begin__, __end__, __label__).
const metaPrefix = "__"

// #endregion path-mode

// #region enumerate

// pathFrame is one level of the explicit traversal stack: a state and the
// index of the next sibling arc to try.
type pathFrame struct {
	state  int
	arcIdx int
}

// EnumeratePaths walks every path from the start state to an accepting state
// and returns each path's output symbol sequence, in native arc order.
//
// The traversal is depth-first over an explicit frame stack, mirroring how a
// path either completes (destination accepting) or descends, never both.
// Realistic composed grammars are acyclic and bounded by sentence length;
// rather than assuming that silently, the stack depth is capped at the total
// arc count, and exceeding the cap returns an error instead of looping.
func EnumeratePaths(f *Fst, mode PathMode) ([][]string, error) {
	if f.Start() < 0 {
		return nil, nil
	}
	maxDepth := f.NumArcs() + 1

	var (
		sentences [][]string
		path      []Arc
	)
	stack := []pathFrame{{state: f.Start()}}

	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		arcs := f.Arcs(fr.state)

		if fr.arcIdx >= len(arcs) {
			// Exhausted siblings: backtrack, dropping the arc that led here.
			stack = stack[:len(stack)-1]
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			continue
		}

		arc := arcs[fr.arcIdx]
		fr.arcIdx++
		path = append(path, arc)

		if f.IsFinal(arc.Next) {
			sentence, err := renderPath(f, path, mode)
			if err != nil {
				return nil, err
			}
			sentences = append(sentences, sentence)
			path = path[:len(path)-1]
			continue
		}

		// Dead ends (no arcs, non-accepting) fall out of the sibling loop
		// on the next iteration and are pruned silently.
		if len(stack) >= maxDepth {
			return nil, fmt.Errorf("path depth exceeds %d arcs: automaton has a cycle reachable before an accepting state", f.NumArcs())
		}
		stack = append(stack, pathFrame{state: arc.Next})
	}

	return sentences, nil
}

// renderPath resolves a path's non-epsilon output labels to symbol names.
func renderPath(f *Fst, path []Arc, mode PathMode) ([]string, error) {
	sentence := []string{}
	for _, arc := range path {
		if arc.OLabel == Epsilon {
			continue
		}
		name, ok := f.OutputSymbols().Name(arc.OLabel)
		if !ok {
			return nil, fmt.Errorf("output label %d not in symbol table", arc.OLabel)
		}
		if mode == LiteralOnly && strings.HasPrefix(name, metaPrefix) {
			continue
		}
		sentence = append(sentence, name)
	}
	return sentence, nil
}

// #endregion enumerate
