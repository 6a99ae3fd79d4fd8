package fst

// #region compose

// statePair identifies one state in the composed automaton.
type statePair struct {
	s1, s2 int
}

// Compose computes the composition a ∘ b over the tropical semiring:
// a's output labels are matched against b's input labels, and the result
// carries a's input labels and b's output labels. Weights multiply
// (tropical: add) along matched arcs and at final states.
//
// a must be epsilon-free on its output side, which holds for every
// LinearAcceptor. b may carry input-epsilon arcs (the usual shape of grammar
// arcs that emit tag markers without consuming a word); those advance b
// alone. With only one epsilon side the simple pairing below is exact and
// needs no epsilon-sequencing filter.
//
// State pairs are expanded breadth-first and arcs appended in operand arc
// order, so the composed arc order is stable for identical inputs.
func Compose(a, b *Fst) *Fst {
	out := New(a.InputSymbols(), b.OutputSymbols())
	if a.Start() < 0 || b.Start() < 0 {
		return out
	}

	ids := make(map[statePair]int)
	var queue []statePair

	stateOf := func(p statePair) int {
		if id, ok := ids[p]; ok {
			return id
		}
		id := out.AddState()
		ids[p] = id
		queue = append(queue, p)
		return id
	}

	start := stateOf(statePair{a.Start(), b.Start()})
	out.SetStart(start)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		id := ids[p]

		fa, fb := a.Final(p.s1), b.Final(p.s2)
		if fa != TropicalZero && fb != TropicalZero {
			out.SetFinal(id, fa+fb)
		}

		// b-only moves: input-epsilon arcs emit without consuming a word.
		for _, arc2 := range b.Arcs(p.s2) {
			if arc2.ILabel != Epsilon {
				continue
			}
			out.AddArc(id, Arc{
				ILabel: Epsilon,
				OLabel: arc2.OLabel,
				Weight: arc2.Weight,
				Next:   stateOf(statePair{p.s1, arc2.Next}),
			})
		}

		// Matched moves: a's output label against b's input label.
		for _, arc1 := range a.Arcs(p.s1) {
			if arc1.OLabel == Epsilon || arc1.OLabel == NoLabel {
				continue
			}
			for _, arc2 := range b.Arcs(p.s2) {
				if arc2.ILabel != arc1.OLabel {
					continue
				}
				out.AddArc(id, Arc{
					ILabel: arc1.ILabel,
					OLabel: arc2.OLabel,
					Weight: arc1.Weight + arc2.Weight,
					Next:   stateOf(statePair{arc1.Next, arc2.Next}),
				})
			}
		}
	}

	return out
}

// #endregion compose

// #region project

// ProjectOutput collapses the transducer onto its output side in place:
// every arc's input label becomes its output label and the input symbol
// table is replaced by the output one. Structure is unchanged.
func (f *Fst) ProjectOutput() {
	for s := range f.arcs {
		for i := range f.arcs[s] {
			f.arcs[s][i].ILabel = f.arcs[s][i].OLabel
		}
	}
	f.isyms = f.osyms
}

// #endregion project
