// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads FTP credentials kept outside the config file, one
// value per file in a secrets directory. The file name is the key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/bactfetch/pkg/types"
)

// Recognized keys.
const (
	KeyFTPUser     = "ftp-user"
	KeyFTPPassword = "ftp-password"
)

// Secrets maps key names to their values.
type Secrets map[string]string

// Load collects the non-empty secret files in dir. A missing directory
// yields no secrets. A file that cannot be read is reported on w and skipped.
func Load(dir string, w io.Writer) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Secrets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Secrets{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		value, err := readValue(filepath.Join(dir, e.Name()))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", e.Name(), err)
			continue
		}
		if value != "" {
			s[e.Name()] = value
		}
	}
	return s, nil
}

func readValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ApplyFTP fills the FTP credentials cfg leaves empty. Values set in the
// configuration take precedence.
func (s Secrets) ApplyFTP(cfg *types.FTPConfig) {
	if cfg.User == "" {
		cfg.User = s[KeyFTPUser]
	}
	if cfg.Password == "" {
		cfg.Password = s[KeyFTPPassword]
	}
}
