// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrAccessionPattern reports an EMBL link that does not have the
// expected "/view/<ACCESSION>&display=..." shape.
var ErrAccessionPattern = errors.New("unrecognized EMBL link")

const viewSegment = "/view/"

// accessionPattern matches one accession or a comma-separated list of them:
// "U00096", "AE005174.2", "CP000001,CP000002".
var accessionPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+(?:,[A-Za-z0-9_.-]+)*$`)

// ExtractAccession returns the accession identifier carried by an ENA view
// link such as "http://www.ebi.ac.uk/ena/data/view/U00096&display=text".
// The accession is the text between "/view/" and the first "&".
func ExtractAccession(href string) (string, error) {
	_, rest, ok := strings.Cut(href, viewSegment)
	if !ok {
		return "", fmt.Errorf("%w: %q has no %s segment", ErrAccessionPattern, href, viewSegment)
	}
	acc, _, _ := strings.Cut(rest, "&")
	if !accessionPattern.MatchString(acc) {
		return "", fmt.Errorf("%w: %q yields accession %q", ErrAccessionPattern, href, acc)
	}
	return acc, nil
}
