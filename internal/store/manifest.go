package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/openvoiceinfra/fstintent/internal/fst"
)

// #region manifest-types
// Manifest lists grammar source files for bulk import into a store.
type Manifest struct {
	Grammars []ManifestEntry `yaml:"grammars"`
}

// ManifestEntry points at one grammar's AT&T text files. Paths are relative
// to the manifest file unless absolute.
type ManifestEntry struct {
	Name     string `yaml:"name"`
	Fst      string `yaml:"fst"`
	ISymbols string `yaml:"isymbols"`
	OSymbols string `yaml:"osymbols"`
}

// #endregion manifest-types

// #region load-manifest
// LoadManifest parses a YAML manifest and resolves entry paths against the
// manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Grammars) == 0 {
		return Manifest{}, fmt.Errorf("manifest %s lists no grammars", path)
	}

	base := filepath.Dir(path)
	for i, entry := range m.Grammars {
		if entry.Name == "" || entry.Fst == "" || entry.ISymbols == "" || entry.OSymbols == "" {
			return Manifest{}, fmt.Errorf("manifest entry %d: name, fst, isymbols and osymbols are all required", i)
		}
		m.Grammars[i].Fst = resolve(base, entry.Fst)
		m.Grammars[i].ISymbols = resolve(base, entry.ISymbols)
		m.Grammars[i].OSymbols = resolve(base, entry.OSymbols)
	}
	return m, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// #endregion load-manifest

// #region load-entry
// LoadEntry reads one manifest entry's files into an Fst.
func LoadEntry(entry ManifestEntry) (*fst.Fst, error) {
	isymsFile, err := os.Open(entry.ISymbols)
	if err != nil {
		return nil, fmt.Errorf("open input symbols: %w", err)
	}
	defer isymsFile.Close()
	isyms, err := fst.ReadSymbols(isymsFile)
	if err != nil {
		return nil, fmt.Errorf("parse input symbols %s: %w", entry.ISymbols, err)
	}

	osymsFile, err := os.Open(entry.OSymbols)
	if err != nil {
		return nil, fmt.Errorf("open output symbols: %w", err)
	}
	defer osymsFile.Close()
	osyms, err := fst.ReadSymbols(osymsFile)
	if err != nil {
		return nil, fmt.Errorf("parse output symbols %s: %w", entry.OSymbols, err)
	}

	fstFile, err := os.Open(entry.Fst)
	if err != nil {
		return nil, fmt.Errorf("open fst: %w", err)
	}
	defer fstFile.Close()
	f, err := fst.ReadText(fstFile, isyms, osyms)
	if err != nil {
		return nil, fmt.Errorf("parse fst %s: %w", entry.Fst, err)
	}
	return f, nil
}

// #endregion load-entry
