// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package listing parses the Ensembl Bacteria FTP index page into a
// species → EMBL accession index.
//
// The page is a table with one row per species and nine cells per row.
// Cell 0 holds the species name, cell 1 the DNA download link and cell 4
// the EMBL link when one exists.
package listing

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/bactfetch/internal/index"
	"github.com/pdiddy/bactfetch/pkg/types"
)

// DefaultURL is the Ensembl Bacteria FTP index page.
const DefaultURL = "http://bacteria.ensembl.org/info/website/ftp/index.html"

const (
	// minRowChildren filters out header and decorative rows.
	minRowChildren = 5
	rowCells       = 9

	speciesCell = 0
	dnaCell     = 1
	emblCell    = 4

	emblMarker     = "EMBL"
	unknownSpecies = "unknown"
)

// Parse reads an index page and returns acc augmented with the species it
// lists. acc may be nil and is never modified. Rows without an EMBL link
// produce a warning on w and are otherwise ignored.
func Parse(r io.Reader, acc *index.SpeciesIndex, w io.Writer) (*index.SpeciesIndex, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	out := index.New()
	if acc != nil {
		out = acc.Clone()
	}

	rowNum := 0
	for _, row := range findAll(doc, atom.Tr) {
		rowNum++
		if countElements(row) <= minRowChildren {
			continue
		}
		cells := childElements(row, atom.Td)
		if len(cells) == 0 {
			continue
		}
		if len(cells) != rowCells {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				types.ErrParseContract, rowNum, len(cells), rowCells)
		}
		if err := parseRow(out, cells, rowNum, w); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseFile parses the index page stored at path into acc.
func ParseFile(path string, acc *index.SpeciesIndex, w io.Writer) (*index.SpeciesIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening listing: %w", err)
	}
	defer f.Close()
	idx, err := Parse(f, acc, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

func parseRow(idx *index.SpeciesIndex, cells []*html.Node, rowNum int, w io.Writer) error {
	species := strings.TrimSpace(textOf(cells[speciesCell]))

	if strings.Contains(textOf(cells[emblCell]), emblMarker) {
		href := hrefOf(cells[emblCell])
		accession, err := ExtractAccession(href)
		if err != nil {
			return fmt.Errorf("%w: row %d (%s): %v", types.ErrParseContract, rowNum, species, err)
		}
		return idx.Add(species, accession)
	}

	// Another row already supplied an accession for this species.
	if _, ok := idx.Get(species); ok && species != "" {
		return nil
	}

	if species == "" {
		species = unknownSpecies
	}
	if dna := hrefOf(cells[dnaCell]); dna != "" {
		fmt.Fprintf(w, "warning: no EMBL entry for species %s (DNA link: %s)\n", species, dna)
	} else {
		fmt.Fprintf(w, "warning: no EMBL entry for species %s (row %d)\n", species, rowNum)
	}
	return nil
}

// findAll returns every element of type a below n in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func countElements(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

func childElements(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// hrefOf returns the href of the first anchor inside n, or "".
func hrefOf(n *html.Node) string {
	anchors := findAll(n, atom.A)
	if len(anchors) == 0 {
		return ""
	}
	for _, attr := range anchors[0].Attr {
		if attr.Key == "href" {
			return attr.Val
		}
	}
	return ""
}
