// import-grammars bulk-loads compiled grammar FSTs listed in a YAML manifest
// into a SQLite grammar store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/openvoiceinfra/fstintent/internal/store"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("FSTINTENT_DB", "grammars.db"), "path to grammar store")
	manifestPath := flag.String("manifest", "", "path to manifest.yaml")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-grammars -manifest path/to/manifest.yaml [-db grammars.db]")
		os.Exit(2)
	}

	manifest, err := store.LoadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	gs, err := store.NewGrammarStore(*dbPath)
	if err != nil {
		log.Fatalf("open grammar store: %v", err)
	}
	defer gs.Close()

	fmt.Println("=== Grammar Import ===")
	fmt.Printf("  DB: %s | Manifest: %s | Grammars: %d\n", *dbPath, *manifestPath, len(manifest.Grammars))

	imported := 0
	for _, entry := range manifest.Grammars {
		f, err := store.LoadEntry(entry)
		if err != nil {
			log.Printf("skip %s: %v", entry.Name, err)
			continue
		}
		if err := gs.Put(entry.Name, f); err != nil {
			log.Printf("skip %s: %v", entry.Name, err)
			continue
		}
		fmt.Printf("  %s: %d states, %d arcs\n", entry.Name, f.NumStates(), f.NumArcs())
		imported++
	}

	fmt.Printf("Imported %d/%d grammars.\n", imported, len(manifest.Grammars))
	if imported < len(manifest.Grammars) {
		os.Exit(1)
	}
}

// #endregion main

// #region env
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env
