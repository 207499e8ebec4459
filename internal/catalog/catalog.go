// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the genome records of the Ensembl REST species
// catalog and filters them by name or by taxonomic subtree.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/bactfetch/pkg/types"
)

// Columns lists the catalog table fields in canonical order.
var Columns = []string{
	"accession", "assembly", "common_name", "display_name",
	"division", "name", "release", "taxon_id",
}

// noneValue renders a null common name.
const noneValue = "None"

// Field selects which record fields a substring filter examines.
type Field int

const (
	FieldAny Field = iota
	FieldName
	FieldDisplayName
)

// ParseField maps "name", "display" and "any" to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return FieldAny, nil
	case "name":
		return FieldName, nil
	case "display", "display_name":
		return FieldDisplayName, nil
	default:
		return FieldAny, fmt.Errorf("unknown field %q: want name, display, or any", s)
	}
}

// TaxonResolver returns the genome names found under a taxon. The
// hierarchy is not part of the catalog listing, so this is a remote lookup.
type TaxonResolver interface {
	Subtree(ctx context.Context, taxon string) ([]string, error)
}

// Index is an ordered sequence of genome records.
type Index struct {
	records []types.GenomeRecord
}

// New wraps records in an Index. The slice is not copied.
func New(records []types.GenomeRecord) *Index {
	return &Index{records: records}
}

// Records returns the records in catalog order.
func (x *Index) Records() []types.GenomeRecord {
	return x.records
}

// Len returns the number of records.
func (x *Index) Len() int {
	return len(x.records)
}

// Filter returns the records whose selected field contains query,
// case-insensitively.
func (x *Index) Filter(query string, field Field) *Index {
	q := strings.ToLower(query)
	var out []types.GenomeRecord
	for _, r := range x.records {
		name := strings.Contains(strings.ToLower(r.Name), q)
		display := strings.Contains(strings.ToLower(r.DisplayName), q)
		var match bool
		switch field {
		case FieldName:
			match = name
		case FieldDisplayName:
			match = display
		case FieldAny:
			match = name || display
		}
		if match {
			out = append(out, r)
		}
	}
	return New(out)
}

// FilterByTaxon keeps the records whose name the resolver places under taxon.
func (x *Index) FilterByTaxon(ctx context.Context, resolver TaxonResolver, taxon string) (*Index, error) {
	names, err := resolver.Subtree(ctx, taxon)
	if err != nil {
		return nil, fmt.Errorf("resolving taxon %q: %w", taxon, err)
	}
	leaves := make(map[string]bool, len(names))
	for _, n := range names {
		leaves[n] = true
	}
	var out []types.GenomeRecord
	for _, r := range x.records {
		if leaves[r.Name] {
			out = append(out, r)
		}
	}
	return New(out), nil
}

// Validate reports the required fields missing from r, naming the record slug.
func Validate(r types.GenomeRecord) error {
	var missing []string
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"accession", r.Accession != ""},
		{"assembly", r.Assembly != ""},
		{"display_name", r.DisplayName != ""},
		{"division", r.Division != ""},
		{"name", r.Name != ""},
		{"release", r.Release > 0},
		{"taxon_id", r.TaxonID != ""},
	} {
		if !f.ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		slug := r.Name
		if slug == "" {
			slug = "<unnamed>"
		}
		return fmt.Errorf("%w: record %s missing %s",
			types.ErrDataContract, slug, strings.Join(missing, ", "))
	}
	return nil
}

// Table renders the records as a tab-separated table with a header row.
// A record missing a required field aborts the whole table.
func (x *Index) Table() (string, error) {
	var b strings.Builder
	b.WriteString(strings.Join(Columns, "\t"))
	b.WriteByte('\n')
	for _, r := range x.records {
		if err := Validate(r); err != nil {
			return "", err
		}
		common := noneValue
		if r.CommonName != nil {
			common = *r.CommonName
		}
		b.WriteString(strings.Join([]string{
			r.Accession, r.Assembly, common, r.DisplayName,
			r.Division, r.Name, strconv.Itoa(r.Release), r.TaxonID,
		}, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// speciesResponse is the /info/species payload.
type speciesResponse struct {
	Species []rawRecord `json:"species"`
}

// rawRecord accepts taxon_id and release as either strings or numbers.
type rawRecord struct {
	Accession   string  `json:"accession"`
	Assembly    string  `json:"assembly"`
	CommonName  *string `json:"common_name"`
	DisplayName string  `json:"display_name"`
	Division    string  `json:"division"`
	Name        string  `json:"name"`
	Release     any     `json:"release"`
	TaxonID     any     `json:"taxon_id"`
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func (r rawRecord) record() types.GenomeRecord {
	release, _ := strconv.Atoi(scalarString(r.Release))
	return types.GenomeRecord{
		Accession:   r.Accession,
		Assembly:    r.Assembly,
		CommonName:  r.CommonName,
		DisplayName: r.DisplayName,
		Division:    r.Division,
		Name:        r.Name,
		Release:     release,
		TaxonID:     scalarString(r.TaxonID),
	}
}

// Decode reads a catalog payload: either {"species": [...]} or a bare array.
func Decode(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var raws []rawRecord
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &raws)
	} else {
		var resp speciesResponse
		err = json.Unmarshal(trimmed, &resp)
		raws = resp.Species
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}

	records := make([]types.GenomeRecord, len(raws))
	for i, raw := range raws {
		records[i] = raw.record()
	}
	return New(records), nil
}
