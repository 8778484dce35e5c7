// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session stores named workspace session manifests as YAML files.
// A session records which repositories belong to a workspace and which
// agent is launched inside it once the workspace is prepared.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when the named session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidName is returned for empty or path-escaping session names.
	ErrInvalidName = errors.New("invalid session name")
)

// RepoRef identifies one repository belonging to a session.
type RepoRef struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Session is the manifest for one workspace.
type Session struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Agent     string    `yaml:"agent"`
	Workspace string    `yaml:"workspace"`
	Repos     []RepoRef `yaml:"repos"`
	CreatedAt time.Time `yaml:"created_at"`
}

// New creates a session manifest with a fresh identity.
func New(name, agent, workspace string, repos []RepoRef) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Agent:     agent,
		Workspace: workspace,
		Repos:     repos,
		CreatedAt: time.Now().UTC(),
	}
}

// Store reads and writes session manifests under a directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a Store rooted at dir on the given filesystem.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(s.dir, name+".yaml"), nil
}

// Save writes the manifest, creating the store directory if needed.
func (s *Store) Save(sess *Session) error {
	p, err := s.path(sess.Name)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return err
	}

	return afero.WriteFile(s.fs, p, data, 0o644)
}

// Load reads the manifest for the named session.
func (s *Store) Load(name string) (*Session, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		return nil, err
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %q: %w", name, err)
	}

	return &sess, nil
}

// List returns all stored sessions sorted by name.
func (s *Store) List() ([]*Session, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var sessions []*Session

	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".yaml") {
			continue
		}

		sess, err := s.Load(strings.TrimSuffix(info.Name(), ".yaml"))
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Name < sessions[j].Name })

	return sessions, nil
}

// Delete removes the manifest for the named session.
func (s *Store) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		return err
	}

	return nil
}
