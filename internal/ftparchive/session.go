// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ftparchive wraps a passive FTP session to the Ensembl Genomes
// archive. A Session lists genome directories for the planner and
// retrieves files for the fetcher.
package ftparchive

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/pdiddy/bactfetch/pkg/types"
)

const (
	DefaultAddr = "ftp.ensemblgenomes.ebi.ac.uk:21"
	DefaultRoot = "/pub/bacteria/current/genbank"

	anonymousUser     = "anonymous"
	anonymousPassword = "anonymous@"
	defaultTimeout    = 60 * time.Second
)

// client is the subset of *ftp.ServerConn a Session uses.
type client interface {
	List(path string) ([]*ftp.Entry, error)
	Retrieve(path string) (io.ReadCloser, error)
	Quit() error
}

// serverConn adapts *ftp.ServerConn to client.
type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retrieve(path string) (io.ReadCloser, error) {
	r, err := c.Retr(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Session is one logged-in FTP connection. It is not safe for concurrent use.
type Session struct {
	conn client
	addr string
}

// Dial connects and logs in. An empty user logs in anonymously.
// Connections are attempted once.
func Dial(cfg types.FTPConfig) (*Session, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", types.ErrTransport, addr, err)
	}

	user, pass := cfg.User, cfg.Password
	if user == "" {
		user, pass = anonymousUser, anonymousPassword
	}
	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("%w: login to %s as %s: %v", types.ErrTransport, addr, user, err)
	}
	return &Session{conn: serverConn{conn}, addr: addr}, nil
}

// List returns the names of the regular files in dir, sorted.
func (s *Session) List(dir string) ([]string, error) {
	entries, err := s.conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s on %s: %v", types.ErrTransport, dir, s.addr, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Retrieve copies the remote file at path to w in binary mode.
func (s *Session) Retrieve(path string, w io.Writer) error {
	r, err := s.conn.Retrieve(path)
	if err != nil {
		return fmt.Errorf("%w: RETR %s: %v", types.ErrTransport, path, err)
	}
	_, copyErr := io.Copy(w, r)
	closeErr := r.Close()
	if copyErr != nil {
		return fmt.Errorf("%w: reading %s: %v", types.ErrTransport, path, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: finishing %s: %v", types.ErrTransport, path, closeErr)
	}
	return nil
}

// Close ends the session.
func (s *Session) Close() error {
	return s.conn.Quit()
}
