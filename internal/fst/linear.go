package fst

// #region linear-acceptor

// LinearAcceptor builds a chain automaton accepting exactly the given token
// sequence: n+1 states, one arc per token, last state final with zero weight.
// The acceptor reuses syms as both its input and output table so that label
// IDs agree with the grammar it will be composed with. Tokens absent from
// syms produce NoLabel arcs, which match nothing downstream rather than
// failing here.
func LinearAcceptor(tokens []string, syms *SymbolTable) *Fst {
	f := New(syms, syms)

	cur := f.AddState()
	f.SetStart(cur)
	for _, tok := range tokens {
		label := NoLabel
		if id, ok := syms.Find(tok); ok {
			label = id
		}
		next := f.AddState()
		f.AddArc(cur, Arc{ILabel: label, OLabel: label, Next: next})
		cur = next
	}
	f.SetFinal(cur, 0)

	return f
}

// #endregion linear-acceptor
