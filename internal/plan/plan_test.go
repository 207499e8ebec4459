// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bactfetch/internal/index"
	"github.com/pdiddy/bactfetch/pkg/types"
)

// --- test helpers ---

type mapLister struct {
	dirs  map[string][]string
	calls []string
}

func (l *mapLister) List(dir string) ([]string, error) {
	l.calls = append(l.calls, dir)
	entries, ok := l.dirs[dir]
	if !ok {
		return nil, errors.New("550 no such directory")
	}
	return entries, nil
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func localNames(m types.Manifest) []string {
	var out []string
	for _, f := range m.Files {
		out = append(out, f.LocalName)
	}
	return out
}

func testIndex() *index.SpeciesIndex {
	return index.FromEntries([]types.SpeciesEntry{
		{Species: "Escherichia coli", Accession: "U00096"},
		{Species: "Bacillus subtilis", Accession: "AL009126"},
	})
}

// --- EMBL ---

func TestEMBLFileName(t *testing.T) {
	tests := []struct {
		species, acc, want string
	}{
		{"Escherichia coli", "U00096", "Escherichia-coli.U00096.EMBL.gz"},
		{"Escherichia coli O157:H7", "BA000007", "Escherichia-coli-O157:H7.BA000007.EMBL.gz"},
		{"Buchnera aphidicola str. APS/Acyrthosiphon", "BA000003", "Buchnera-aphidicola-str.-APS<SLASH>Acyrthosiphon.BA000003.EMBL.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, EMBLFileName(tt.species, tt.acc))
		})
	}
}

func TestEMBLURL(t *testing.T) {
	assert.Equal(t, "http://www.ebi.ac.uk/ena/data/view/U00096&display=text&download=gzip", EMBLURL("", "U00096"))
	assert.Equal(t, "http://mirror/view/U00096&display=text&download=gzip", EMBLURL("http://mirror/view/", "U00096"))
}

func TestEMBLSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Escherichia-coli.U00096.EMBL.gz")

	m := EMBL(testIndex(), types.RetrievalConfig{OutDir: dir})
	assert.Equal(t, []string{"Bacillus-subtilis.AL009126.EMBL.gz"}, localNames(m))
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, types.SourceHTTP, m.Files[0].Source)
	assert.Equal(t, DefaultEMBLBaseURL+"AL009126"+emblQuery, m.Files[0].RemotePath)
	assert.Equal(t, "Bacillus subtilis", m.Files[0].Label)
}

func TestEMBLForce(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Escherichia-coli.U00096.EMBL.gz")

	m := EMBL(testIndex(), types.RetrievalConfig{OutDir: dir, Force: true})
	assert.Equal(t, []string{"Escherichia-coli.U00096.EMBL.gz", "Bacillus-subtilis.AL009126.EMBL.gz"}, localNames(m))
	assert.Zero(t, m.Skipped)
}

func TestEMBLSecondRunIsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := types.RetrievalConfig{OutDir: dir}

	first := EMBL(testIndex(), cfg)
	require.Equal(t, 2, first.Len())
	for _, f := range first.Files {
		touch(t, dir, f.LocalName)
	}

	second := EMBL(testIndex(), cfg)
	assert.Zero(t, second.Len())
	assert.Equal(t, 2, second.Skipped)
}

// --- FTP ---

func ftpRecords() []types.GenomeRecord {
	return []types.GenomeRecord{
		{Name: "escherichia_coli_str_k_12_substr_mg1655"},
		{Name: "bacillus_subtilis_subsp_subtilis_str_168"},
	}
}

func TestFTPFiltersNonData(t *testing.T) {
	lister := &mapLister{dirs: map[string][]string{
		"/pub/genbank/escherichia_coli_str_k_12_substr_mg1655": {
			"CHECKSUMS", "README",
			"Escherichia_coli.ASM584v2.dat.gz",
			"Escherichia_coli.ASM584v2.plasmid_F.dat.gz",
		},
		"/pub/genbank/bacillus_subtilis_subsp_subtilis_str_168": {
			"Bacillus_subtilis.ASM904v1.dat.gz",
			"Bacillus_subtilis.ASM904v1.PLASMID.dat.gz",
		},
	}}

	m, err := FTP(lister, ftpRecords(), "/pub/genbank", types.RetrievalConfig{OutDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Escherichia_coli.ASM584v2.dat.gz", "Bacillus_subtilis.ASM904v1.dat.gz"}, localNames(m))
	assert.Equal(t, types.SourceFTP, m.Files[0].Source)
	assert.Equal(t, "/pub/genbank/escherichia_coli_str_k_12_substr_mg1655/Escherichia_coli.ASM584v2.dat.gz", m.Files[0].RemotePath)
	assert.Equal(t, "escherichia_coli_str_k_12_substr_mg1655", m.Files[0].Label)
}

func TestFTPSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Escherichia_coli.ASM584v2.dat.gz")
	lister := &mapLister{dirs: map[string][]string{
		"/g/escherichia_coli_str_k_12_substr_mg1655":  {"Escherichia_coli.ASM584v2.dat.gz"},
		"/g/bacillus_subtilis_subsp_subtilis_str_168": {"Bacillus_subtilis.ASM904v1.dat.gz"},
	}}

	m, err := FTP(lister, ftpRecords(), "/g", types.RetrievalConfig{OutDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bacillus_subtilis.ASM904v1.dat.gz"}, localNames(m))
	assert.Equal(t, 1, m.Skipped)
}

func TestFTPListingFailure(t *testing.T) {
	lister := &mapLister{dirs: map[string][]string{
		"/g/escherichia_coli_str_k_12_substr_mg1655": {"a.dat.gz"},
	}}
	_, err := FTP(lister, ftpRecords(), "/g", types.RetrievalConfig{OutDir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorContains(t, err, "bacillus_subtilis_subsp_subtilis_str_168")
	assert.Len(t, lister.calls, 2)
}

func TestIsDataFile(t *testing.T) {
	assert.False(t, IsDataFile("CHECKSUMS"))
	assert.False(t, IsDataFile("README"))
	assert.False(t, IsDataFile("x.plasmid_pO157.dat.gz"))
	assert.True(t, IsDataFile("x.chromosome.Chromosome.dat.gz"))
}

// --- WriteManifest ---

func TestWriteManifest(t *testing.T) {
	p := filepath.Join(t.TempDir(), "manifest.yaml")
	m := types.Manifest{
		Dir: "out",
		Files: []types.RemoteFileRef{{
			Source: types.SourceFTP, RemotePath: "/g/a/a.dat.gz", LocalName: "a.dat.gz", Label: "a",
		}},
	}
	require.NoError(t, WriteManifest(p, m))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	files := got["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "ftp", files[0].(map[string]any)["source"])
	assert.Equal(t, "out", got["dir"])
}
