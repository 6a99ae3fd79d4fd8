package fst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AT&T text format, as emitted by grammar compilers:
//
//	src dst isym osym [weight]   arc line
//	state [weight]               final line
//
// The first state mentioned is the start state. Symbol table files carry one
// "symbol id" pair per line with <eps> at 0.

// #region read-symbols

// ReadSymbols parses a symbol table file. Label 0 must be <eps>.
func ReadSymbols(r io.Reader) (*SymbolTable, error) {
	byID := []string{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("symbols line %d: want 2 fields, got %d", lineNo, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("symbols line %d: bad label %q", lineNo, fields[1])
		}
		if id < 0 {
			return nil, fmt.Errorf("symbols line %d: negative label %d", lineNo, id)
		}
		for len(byID) <= id {
			byID = append(byID, "")
		}
		byID[id] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbols: %w", err)
	}

	if len(byID) == 0 || byID[Epsilon] != EpsilonSymbol {
		return nil, fmt.Errorf("symbol table must map label 0 to %s", EpsilonSymbol)
	}

	t := &SymbolTable{byName: make(map[string]int, len(byID)), byID: byID}
	for id, name := range byID {
		if name == "" {
			return nil, fmt.Errorf("symbol table has a gap at label %d", id)
		}
		t.byName[name] = id
	}
	return t, nil
}

// WriteSymbols writes a symbol table in "symbol id" form.
func WriteSymbols(w io.Writer, t *SymbolTable) error {
	bw := bufio.NewWriter(w)
	for id, name := range t.byID {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", name, id); err != nil {
			return fmt.Errorf("write symbols: %w", err)
		}
	}
	return bw.Flush()
}

// #endregion read-symbols

// #region read-text

// ReadText parses an AT&T text automaton against already-loaded symbol
// tables. Arc symbols must resolve in the tables; anything else is a grammar
// file inconsistency.
func ReadText(r io.Reader, isyms, osyms *SymbolTable) (*Fst, error) {
	f := New(isyms, osyms)

	ensure := func(state int) {
		for f.NumStates() <= state {
			f.AddState()
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		src, err := strconv.Atoi(fields[0])
		if err != nil || src < 0 {
			return nil, fmt.Errorf("fst line %d: bad state %q", lineNo, fields[0])
		}
		ensure(src)
		if f.Start() < 0 {
			f.SetStart(src)
		}

		switch len(fields) {
		case 1, 2:
			weight := 0.0
			if len(fields) == 2 {
				weight, err = strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fmt.Errorf("fst line %d: bad final weight %q", lineNo, fields[1])
				}
			}
			f.SetFinal(src, weight)
		case 4, 5:
			dst, err := strconv.Atoi(fields[1])
			if err != nil || dst < 0 {
				return nil, fmt.Errorf("fst line %d: bad state %q", lineNo, fields[1])
			}
			ensure(dst)
			ilabel, ok := isyms.Find(fields[2])
			if !ok {
				return nil, fmt.Errorf("fst line %d: unknown input symbol %q", lineNo, fields[2])
			}
			olabel, ok := osyms.Find(fields[3])
			if !ok {
				return nil, fmt.Errorf("fst line %d: unknown output symbol %q", lineNo, fields[3])
			}
			weight := 0.0
			if len(fields) == 5 {
				weight, err = strconv.ParseFloat(fields[4], 64)
				if err != nil {
					return nil, fmt.Errorf("fst line %d: bad arc weight %q", lineNo, fields[4])
				}
			}
			f.AddArc(src, Arc{ILabel: ilabel, OLabel: olabel, Weight: weight, Next: dst})
		default:
			return nil, fmt.Errorf("fst line %d: want 1, 2, 4 or 5 fields, got %d", lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fst: %w", err)
	}

	if f.NumStates() > 0 && f.Start() < 0 {
		return nil, fmt.Errorf("fst text has no start state")
	}
	return f, nil
}

// WriteText writes f in AT&T text form. The start state's lines come first
// so ReadText(WriteText(f)) reconstructs the same start state; per state,
// arcs precede the final line.
func WriteText(w io.Writer, f *Fst) error {
	bw := bufio.NewWriter(w)

	order := make([]int, 0, f.NumStates())
	if f.Start() >= 0 {
		order = append(order, f.Start())
	}
	for s := 0; s < f.NumStates(); s++ {
		if s != f.Start() {
			order = append(order, s)
		}
	}

	for _, s := range order {
		for _, arc := range f.Arcs(s) {
			isym, ok := f.InputSymbols().Name(arc.ILabel)
			if !ok {
				return fmt.Errorf("state %d: input label %d not in symbol table", s, arc.ILabel)
			}
			osym, ok := f.OutputSymbols().Name(arc.OLabel)
			if !ok {
				return fmt.Errorf("state %d: output label %d not in symbol table", s, arc.OLabel)
			}
			if _, err := fmt.Fprintf(bw, "%d\t%d\t%s\t%s\t%s\n",
				s, arc.Next, isym, osym, formatWeight(arc.Weight)); err != nil {
				return fmt.Errorf("write arc: %w", err)
			}
		}
		if f.IsFinal(s) {
			if _, err := fmt.Fprintf(bw, "%d\t%s\n", s, formatWeight(f.Final(s))); err != nil {
				return fmt.Errorf("write final: %w", err)
			}
		}
	}
	return bw.Flush()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// #endregion read-text
