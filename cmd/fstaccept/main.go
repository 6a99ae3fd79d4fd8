// fstaccept recognizes intents from sentences using a compiled grammar FST.
// The grammar comes either from AT&T text files or from a grammar store by
// name. Sentences are taken from the command line, or read interactively
// from stdin when none are given. Results are written as JSON keyed by
// sentence.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/openvoiceinfra/fstintent/internal/decode"
	"github.com/openvoiceinfra/fstintent/internal/fst"
	"github.com/openvoiceinfra/fstintent/internal/logging"
	"github.com/openvoiceinfra/fstintent/internal/recognize"
	"github.com/openvoiceinfra/fstintent/internal/store"
)

// #region main
func main() {
	fstPath := flag.String("fst", "", "path to AT&T text FST (file mode)")
	isymsPath := flag.String("isymbols", "", "path to input symbol table (file mode)")
	osymsPath := flag.String("osymbols", "", "path to output symbol table (file mode)")
	dbPath := flag.String("db", envOr("FSTINTENT_DB", ""), "path to grammar store (store mode)")
	grammarName := flag.String("grammar", "", "grammar name in the store (store mode)")
	intentName := flag.String("intent", "", "intent name override (default: grammar name)")
	dontReplace := flag.Bool("dont-replace", false, "disable TAG:REPLACE behavior")
	record := flag.Bool("record", false, "write outcomes to the recognition log (store mode)")
	flag.Parse()

	fileMode := *fstPath != ""
	storeMode := *dbPath != "" && *grammarName != ""
	if fileMode == storeMode {
		fmt.Fprintln(os.Stderr, "usage: fstaccept -fst g.fst.txt -isymbols g.isyms -osymbols g.osyms [sentence ...]")
		fmt.Fprintln(os.Stderr, "       fstaccept -db grammars.db -grammar name [-record] [sentence ...]")
		fmt.Fprintln(os.Stderr, "flags: [-intent name] [-dont-replace]")
		os.Exit(2)
	}

	var (
		grammar *fst.Fst
		name    string
		err     error
		rec     *recognize.Recognizer
		sink    recognize.Sink
	)

	if fileMode {
		if *isymsPath == "" || *osymsPath == "" {
			log.Fatalf("file mode requires -isymbols and -osymbols")
		}
		grammar, err = store.LoadEntry(store.ManifestEntry{
			Name:     *fstPath,
			Fst:      *fstPath,
			ISymbols: *isymsPath,
			OSymbols: *osymsPath,
		})
		if err != nil {
			log.Fatalf("load grammar: %v", err)
		}
		name = strings.TrimSuffix(filepath.Base(*fstPath), filepath.Ext(*fstPath))
	} else {
		gs, err := store.NewGrammarStore(*dbPath)
		if err != nil {
			log.Fatalf("open grammar store: %v", err)
		}
		defer gs.Close()

		grammar, err = gs.Get(*grammarName)
		if err != nil {
			log.Fatalf("load grammar: %v", err)
		}
		name = *grammarName

		if *record {
			rlog, err := logging.NewRecognitionLog(gs.DB())
			if err != nil {
				log.Fatalf("open recognition log: %v", err)
			}
			sink = rlog
		}
	}

	rec = newRecognizer(name, grammar, *intentName, *dontReplace)
	if sink != nil {
		rec.SetSink(sink)
	}

	if sentences := flag.Args(); len(sentences) > 0 {
		results := rec.RecognizeBatch(sentences)
		if err := json.NewEncoder(os.Stdout).Encode(results); err != nil {
			log.Fatalf("encode results: %v", err)
		}
		return
	}

	runInteractive(rec)
}

// #endregion main

// #region recognizer
func newRecognizer(name string, grammar *fst.Fst, intentOverride string, dontReplace bool) *recognize.Recognizer {
	intent := intentOverride
	if intent == "" {
		intent = name
	}
	return recognize.New(name, grammar, recognize.Options{
		IntentName:  intent,
		ReplaceTags: !dontReplace,
	})
}

// #endregion recognizer

// #region interactive
// runInteractive reads sentences from stdin, one per line, and prints each
// result as a single JSON line.
func runInteractive(rec *recognize.Recognizer) {
	fmt.Fprintln(os.Stderr, "Reading sentences from stdin ('quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		sentence := strings.TrimSpace(scanner.Text())
		if sentence == "" {
			continue
		}
		if sentence == "quit" || sentence == "exit" {
			break
		}

		results := rec.RecognizeBatch([]string{sentence})
		intents, ok := results[sentence]
		if !ok {
			intents = []decode.Intent{}
		}
		if err := enc.Encode(intents); err != nil {
			log.Printf("encode result: %v", err)
		}
	}
}

// #endregion interactive

// #region env
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env
