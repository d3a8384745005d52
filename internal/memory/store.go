// Package memory implements the persistent query/domain store that
// closes the feedback loop between runs.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// DefaultPath is the dotfile used when no path is configured.
const DefaultPath = ".navigator_memory.json"

// document is the on-disk shape: two top-level maps, rewritten whole
// on every mutation. A torn write on crash is an accepted risk.
type document struct {
	Queries map[string]string `json:"queries"`
	Domains map[string]int    `json:"domains"`
}

// Store is the single writer of its backing file. Mutations are
// serialized; reads never touch the disk after construction.
type Store struct {
	mu   sync.Mutex
	path string
	data document
}

// Open loads the store from path, starting empty when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path: path,
		data: document{
			Queries: make(map[string]string),
			Domains: make(map[string]int),
		},
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read memory file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse memory file: %w", err)
	}
	if s.data.Queries == nil {
		s.data.Queries = make(map[string]string)
	}
	if s.data.Domains == nil {
		s.data.Domains = make(map[string]int)
	}
	return s, nil
}

// RememberQuery stores the mapping under the lowercased query and
// persists immediately. Last write wins.
func (s *Store) RememberQuery(query, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Queries[strings.ToLower(query)] = url
	return s.persistLocked()
}

// RecallQuery looks up the exact lowercased query.
func (s *Store) RecallQuery(query string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.data.Queries[strings.ToLower(query)]
	return url, ok
}

// ReinforceDomain increments the counter for the URL's host (the
// third "/"-delimited segment) and persists immediately. Malformed
// URLs produce an explicit error rather than corrupting the map.
func (s *Store) ReinforceDomain(url string) error {
	parts := strings.Split(url, "/")
	if len(parts) < 3 || parts[2] == "" {
		return fmt.Errorf("cannot extract domain from %q", url)
	}
	domain := parts[2]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Domains[domain]++
	return s.persistLocked()
}

// TrustedDomains returns all known domains by descending counter.
// Ties break by ascending domain name so the order is deterministic.
func (s *Store) TrustedDomains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	domains := make([]string, 0, len(s.data.Domains))
	for d := range s.data.Domains {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		ci, cj := s.data.Domains[domains[i]], s.data.Domains[domains[j]]
		if ci != cj {
			return ci > cj
		}
		return domains[i] < domains[j]
	})
	return domains
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	return nil
}
