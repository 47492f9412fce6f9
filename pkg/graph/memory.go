package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// Dump file extensions recognized when loading a directory.
var dumpExtensions = []string{".nq", ".nt"}

// MemoryStore holds parsed triples in memory, indexed by subject and object.
// Loading more triples bumps a generation counter so callers know that any
// derived collection statistics are stale and must be rebuilt.
type MemoryStore struct {
	triples   []rdf.Triple
	bySubject map[rdf.Term][]int
	byObject  map[rdf.Term][]int
	languages []string
	gen       int
}

// NewMemoryStore creates an empty store using the default literal language
// filter.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySubject: make(map[rdf.Term][]int),
		byObject:  make(map[rdf.Term][]int),
		languages: rdf.DefaultLanguages,
	}
}

// Add appends triples to the store, skipping statements with blank-node
// endpoints and literals outside the language filter. It bumps the
// generation counter.
func (s *MemoryStore) Add(triples []rdf.Triple) {
	for _, t := range triples {
		if t.Subject.IsBlank() || t.Object.IsBlank() {
			continue
		}
		if t.Object.IsLiteral() && !rdf.LanguageAllowed(t.Object.Lang, s.languages) {
			continue
		}
		idx := len(s.triples)
		s.triples = append(s.triples, t)
		s.bySubject[t.Subject] = append(s.bySubject[t.Subject], idx)
		s.byObject[t.Object] = append(s.byObject[t.Object], idx)
	}
	s.gen++
}

// LoadFile parses one N-Triples / N-Quads file into the store.
func (s *MemoryStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrUnavailable, path, err)
	}
	defer f.Close()

	triples, err := rdf.ParseNQuads(f)
	if err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrUnavailable, path, err)
	}
	s.Add(triples)
	logger.Info("Loaded triples", "file", path, "count", len(triples))
	return nil
}

// LoadDir loads every recognized dump file directly inside the directory.
func (s *MemoryStore) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrUnavailable, dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		recognized := false
		for _, known := range dumpExtensions {
			if ext == known {
				recognized = true
				break
			}
		}
		if !recognized {
			continue
		}
		if err := s.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
		loaded++
	}
	if loaded == 0 {
		logger.Warn("No triple files found in directory", "dir", dir)
	}
	return nil
}

// Load dispatches to LoadFile or LoadDir depending on the path.
func (s *MemoryStore) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if info.IsDir() {
		return s.LoadDir(path)
	}
	return s.LoadFile(path)
}

// Generation returns a counter incremented on every load. Collection
// statistics built against an older generation are stale.
func (s *MemoryStore) Generation() int {
	return s.gen
}

// TripleCount returns the number of stored triples.
func (s *MemoryStore) TripleCount() int {
	return len(s.triples)
}

// SubjectCount returns the number of distinct subject entities.
func (s *MemoryStore) SubjectCount() int {
	return len(s.bySubject)
}

// TriplesFor returns every triple with the entity as subject or object.
func (s *MemoryStore) TriplesFor(_ context.Context, entity rdf.Term) ([]rdf.Triple, error) {
	subjectIdx := s.bySubject[entity]
	objectIdx := s.byObject[entity]

	result := make([]rdf.Triple, 0, len(subjectIdx)+len(objectIdx))
	seen := make(map[int]struct{}, len(subjectIdx)+len(objectIdx))
	for _, lst := range [][]int{subjectIdx, objectIdx} {
		for _, i := range lst {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			result = append(result, s.triples[i])
		}
	}
	return result, nil
}

// Subjects returns the distinct subject entities, sorted for reproducible
// iteration order.
func (s *MemoryStore) Subjects(_ context.Context) ([]rdf.Term, error) {
	subjects := make([]rdf.Term, 0, len(s.bySubject))
	for subject := range s.bySubject {
		subjects = append(subjects, subject)
	}
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].Value < subjects[j].Value
	})
	return subjects, nil
}

// Size returns the number of distinct subject entities.
func (s *MemoryStore) Size(_ context.Context) (int, error) {
	return len(s.bySubject), nil
}
