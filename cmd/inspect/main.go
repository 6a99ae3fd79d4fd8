// inspect examines a grammar store: lists stored grammars, dumps one
// grammar's structure and sample sentences, or shows recent recognition-log
// entries.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/openvoiceinfra/fstintent/internal/fst"
	"github.com/openvoiceinfra/fstintent/internal/logging"
	"github.com/openvoiceinfra/fstintent/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("FSTINTENT_DB", ""), "path to grammar store")
	grammar := flag.String("grammar", "", "show single grammar detail")
	sentences := flag.Int("sentences", 10, "max sample sentences in detail mode")
	logRows := flag.Int("log", 0, "show N most recent recognition-log entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect -db grammars.db [-grammar name] [-sentences N] [-log N] [-json]")
		os.Exit(2)
	}

	gs, err := store.NewGrammarStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open grammar store: %v\n", err)
		os.Exit(1)
	}
	defer gs.Close()

	switch {
	case *logRows > 0:
		err = runLogMode(gs, *logRows, *jsonOut)
	case *grammar != "":
		err = runDetailMode(gs, *grammar, *sentences, *jsonOut)
	default:
		err = runListMode(gs, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(gs *store.GrammarStore, jsonOut bool) error {
	infos, err := gs.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(infos)
	}

	fmt.Printf("%-24s %8s %8s  %s\n", "NAME", "STATES", "ARCS", "UPDATED")
	for _, info := range infos {
		fmt.Printf("%-24s %8d %8d  %s\n",
			info.Name, info.NumStates, info.NumArcs,
			info.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%d grammars.\n", len(infos))
	return nil
}

// #endregion list-mode

// #region detail-mode

// grammarDetail is the JSON shape of detail mode output.
type grammarDetail struct {
	Name      string     `json:"name"`
	NumStates int        `json:"num_states"`
	NumArcs   int        `json:"num_arcs"`
	Sentences [][]string `json:"sentences,omitempty"`
	PathError string     `json:"path_error,omitempty"`
}

func runDetailMode(gs *store.GrammarStore, name string, maxSentences int, jsonOut bool) error {
	f, err := gs.Get(name)
	if err != nil {
		return err
	}

	detail := grammarDetail{
		Name:      name,
		NumStates: f.NumStates(),
		NumArcs:   f.NumArcs(),
	}

	// Grammars with loops (e.g. repeat rules) cannot be exhaustively
	// enumerated; report that instead of failing the whole dump.
	paths, err := fst.EnumeratePaths(f, fst.LiteralOnly)
	if err != nil {
		detail.PathError = err.Error()
	} else {
		if len(paths) > maxSentences {
			paths = paths[:maxSentences]
		}
		detail.Sentences = paths
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(detail)
	}

	fmt.Printf("grammar %s: %d states, %d arcs\n", detail.Name, detail.NumStates, detail.NumArcs)
	if detail.PathError != "" {
		fmt.Printf("  sentences: not enumerable (%s)\n", detail.PathError)
		return nil
	}
	for _, sentence := range detail.Sentences {
		fmt.Printf("  %s\n", strings.Join(sentence, " "))
	}
	return nil
}

// #endregion detail-mode

// #region log-mode

func runLogMode(gs *store.GrammarStore, limit int, jsonOut bool) error {
	rlog, err := logging.NewRecognitionLog(gs.DB())
	if err != nil {
		return err
	}
	entries, err := rlog.Recent(limit)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	for _, e := range entries {
		status := e.Intent
		if e.ErrReason != "" {
			status = "ERROR: " + e.ErrReason
		}
		fmt.Printf("%s  %-16s %-32q paths=%d conf=%.3f  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Grammar, e.Sentence, e.PathCount, e.Confidence, status)
	}
	fmt.Printf("%d entries.\n", len(entries))
	return nil
}

// #endregion log-mode

// #region env
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env
