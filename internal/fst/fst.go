// Package fst provides a weighted finite-state transducer over the tropical
// semiring, with just enough algebra (composition, projection, exhaustive
// path enumeration) to run sentence acceptors against compiled grammars.
package fst

import "math"

// #region constants

// Epsilon is the reserved label for the empty transition. Label 0 is always
// epsilon in every symbol table.
const Epsilon = 0

// EpsilonSymbol is the textual name of the epsilon label.
const EpsilonSymbol = "<eps>"

// NoLabel marks an arc whose symbol was absent from the shared symbol table.
// No grammar arc ever carries it, so such arcs are unmatchable under
// composition rather than an error at construction time.
const NoLabel = -1

// TropicalZero is the semiring zero: the final weight of a non-accepting
// state. Only equality to it matters downstream, not magnitude.
var TropicalZero = math.Inf(1)

// #endregion constants

// #region symbol-table

// SymbolTable is a bijective mapping between string symbols and integer
// labels. Label 0 is always <eps>.
type SymbolTable struct {
	byName map[string]int
	byID   []string
}

// NewSymbolTable creates a table containing only the epsilon symbol.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: map[string]int{EpsilonSymbol: Epsilon},
		byID:   []string{EpsilonSymbol},
	}
}

// AddSymbol interns name and returns its label. Existing symbols keep their
// original label.
func (t *SymbolTable) AddSymbol(name string) int {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := len(t.byID)
	t.byName[name] = id
	t.byID = append(t.byID, name)
	return id
}

// Find returns the label for name, or false if name was never interned.
func (t *SymbolTable) Find(name string) (int, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name resolves a label back to its symbol, or false for unknown labels.
func (t *SymbolTable) Name(id int) (string, bool) {
	if id < 0 || id >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}

// Len returns the number of interned symbols, epsilon included.
func (t *SymbolTable) Len() int {
	return len(t.byID)
}

// #endregion symbol-table

// #region arc

// Arc is a single weighted transition. ILabel/OLabel index the owning
// automaton's input/output symbol tables.
type Arc struct {
	ILabel int
	OLabel int
	Weight float64
	Next   int
}

// #endregion arc

// #region fst-struct

// Fst is a mutable in-memory weighted transducer. States are dense integers
// handed out by AddState; arcs keep insertion order, which downstream path
// enumeration relies on for deterministic results.
type Fst struct {
	arcs   [][]Arc
	finals []float64
	start  int
	isyms  *SymbolTable
	osyms  *SymbolTable
}

// New creates an empty Fst sharing the given symbol tables. Either table may
// be shared with other automata; composition requires it.
func New(isyms, osyms *SymbolTable) *Fst {
	return &Fst{start: -1, isyms: isyms, osyms: osyms}
}

// #endregion fst-struct

// #region mutators

// AddState appends a fresh non-accepting state and returns its ID.
func (f *Fst) AddState() int {
	f.arcs = append(f.arcs, nil)
	f.finals = append(f.finals, TropicalZero)
	return len(f.arcs) - 1
}

// AddArc appends an arc to state. The state must have been returned by
// AddState on this Fst.
func (f *Fst) AddArc(state int, arc Arc) {
	f.arcs[state] = append(f.arcs[state], arc)
}

// SetStart designates the start state.
func (f *Fst) SetStart(state int) {
	f.start = state
}

// SetFinal assigns a final weight. Use 0 for an unbiased accepting state and
// TropicalZero to make the state non-accepting again.
func (f *Fst) SetFinal(state int, weight float64) {
	f.finals[state] = weight
}

// #endregion mutators

// #region accessors

// Start returns the start state, or -1 when none was set.
func (f *Fst) Start() int {
	return f.start
}

// Arcs returns the outgoing arcs of state in insertion order. The slice is
// owned by the Fst and must not be mutated.
func (f *Fst) Arcs(state int) []Arc {
	if state < 0 || state >= len(f.arcs) {
		return nil
	}
	return f.arcs[state]
}

// Final returns the final weight of state, TropicalZero for unknown states.
func (f *Fst) Final(state int) float64 {
	if state < 0 || state >= len(f.finals) {
		return TropicalZero
	}
	return f.finals[state]
}

// IsFinal reports whether state is accepting (final weight differs from the
// semiring zero).
func (f *Fst) IsFinal(state int) bool {
	return f.Final(state) != TropicalZero
}

// NumStates returns the state count.
func (f *Fst) NumStates() int {
	return len(f.arcs)
}

// NumArcs returns the total arc count across all states.
func (f *Fst) NumArcs() int {
	n := 0
	for _, a := range f.arcs {
		n += len(a)
	}
	return n
}

// InputSymbols returns the input symbol table.
func (f *Fst) InputSymbols() *SymbolTable {
	return f.isyms
}

// OutputSymbols returns the output symbol table.
func (f *Fst) OutputSymbols() *SymbolTable {
	return f.osyms
}

// #endregion accessors
