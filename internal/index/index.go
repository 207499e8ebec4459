// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index holds the species → accession mapping built from the
// Ensembl Bacteria listing, with substring search and a tab-separated
// table form for persistence.
package index

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/bactfetch/pkg/types"
)

// SpeciesIndex maps species names to accession identifiers. Iteration
// follows insertion order so tables and manifests are reproducible.
type SpeciesIndex struct {
	keys []string
	acc  map[string]string
}

// New returns an empty index.
func New() *SpeciesIndex {
	return &SpeciesIndex{acc: make(map[string]string)}
}

// FromEntries builds an index from entries, last value winning on repeats.
func FromEntries(entries []types.SpeciesEntry) *SpeciesIndex {
	idx := New()
	for _, e := range entries {
		idx.Set(e.Species, e.Accession)
	}
	return idx
}

// Len returns the number of distinct species.
func (x *SpeciesIndex) Len() int {
	return len(x.keys)
}

// Get returns the accession for species.
func (x *SpeciesIndex) Get(species string) (string, bool) {
	a, ok := x.acc[species]
	return a, ok
}

// Set stores accession under species. An existing key keeps its position.
func (x *SpeciesIndex) Set(species, accession string) {
	if _, ok := x.acc[species]; !ok {
		x.keys = append(x.keys, species)
	}
	x.acc[species] = accession
}

// Add stores accession under species, refusing to replace a different
// accession already recorded for the same species.
func (x *SpeciesIndex) Add(species, accession string) error {
	if prev, ok := x.acc[species]; ok {
		if prev == accession {
			return nil
		}
		return fmt.Errorf("%w: species %q listed with accessions %s and %s",
			types.ErrParseContract, species, prev, accession)
	}
	x.Set(species, accession)
	return nil
}

// Entries returns the entries in insertion order.
func (x *SpeciesIndex) Entries() []types.SpeciesEntry {
	out := make([]types.SpeciesEntry, len(x.keys))
	for i, k := range x.keys {
		out[i] = types.SpeciesEntry{Species: k, Accession: x.acc[k]}
	}
	return out
}

// Clone returns an independent copy.
func (x *SpeciesIndex) Clone() *SpeciesIndex {
	c := &SpeciesIndex{
		keys: make([]string, len(x.keys)),
		acc:  make(map[string]string, len(x.acc)),
	}
	copy(c.keys, x.keys)
	for k, v := range x.acc {
		c.acc[k] = v
	}
	return c
}

// Update merges other into x. Keys present on both sides take the value
// from other.
func (x *SpeciesIndex) Update(other *SpeciesIndex) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		x.Set(k, other.acc[k])
	}
}

// Search returns a new index with the species whose name, lower-cased with
// underscores read as spaces, contains the lower-cased query. So "Escherichia
// coli" matches "escherichia_coli".
func (x *SpeciesIndex) Search(query string) *SpeciesIndex {
	q := strings.ToLower(query)
	out := New()
	for _, k := range x.keys {
		if strings.Contains(NormalizeName(k), q) {
			out.Set(k, x.acc[k])
		}
	}
	return out
}

// NormalizeName lower-cases name and replaces underscores with spaces.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", " ")
}

// Table renders the index as "species\taccession" lines, one per entry.
// Tabs inside names are not escaped and corrupt the row.
func (x *SpeciesIndex) Table() string {
	var b strings.Builder
	for _, k := range x.keys {
		b.WriteString(k)
		b.WriteByte('\t')
		b.WriteString(x.acc[k])
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTable writes the table form to w.
func (x *SpeciesIndex) WriteTable(w io.Writer) error {
	_, err := io.WriteString(w, x.Table())
	return err
}

// ParseTable reads the table form. Every non-empty line must hold exactly
// two tab-separated fields.
func ParseTable(r io.Reader) (*SpeciesIndex, error) {
	idx := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 2",
				types.ErrTableFormat, n, len(fields))
		}
		idx.Set(fields[0], fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return idx, nil
}

// LoadTable reads a table file from disk.
func LoadTable(path string) (*SpeciesIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index table: %w", err)
	}
	defer f.Close()
	idx, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// SaveTable writes the table form to path.
func (x *SpeciesIndex) SaveTable(path string) error {
	return os.WriteFile(path, []byte(x.Table()), 0o644)
}
