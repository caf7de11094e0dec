// Package catalog searches the exercise template catalog for one editing
// session at a time.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/fitplan/internal/models"
)

// Source is the Program Service call a Searcher needs.
type Source interface {
	SearchTemplates(ctx context.Context, query string) ([]models.ExerciseTemplate, error)
}

// Searcher runs template searches for a single editing session. Only the
// most recent search can deliver results: starting a new one cancels the
// previous request, and any late response it still produces is dropped.
type Searcher struct {
	src   Source
	cache *Cache
	log   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSearcher creates a Searcher. cache may be nil.
func NewSearcher(src Source, cache *Cache, log *slog.Logger) *Searcher {
	return &Searcher{src: src, cache: cache, log: log}
}

// Search returns the templates matching query. ok is false when a newer
// search superseded this one, in which case the result must be ignored.
// Service failures yield an empty list rather than an error.
func (s *Searcher) Search(ctx context.Context, query string) (templates []models.ExerciseTemplate, ok bool) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	if s.cache != nil {
		cached, hit, err := s.cache.Get(query)
		if err != nil {
			s.log.Warn("catalog cache read failed", "query", query, "error", err)
		}
		if hit {
			return cached, s.current(token)
		}
	}

	results, err := s.src.SearchTemplates(ctx, query)
	if !s.current(token) {
		s.log.Debug("discarding stale template search", "query", query)
		return nil, false
	}
	if err != nil {
		s.log.Warn("template search failed", "query", query, "error", err)
		return []models.ExerciseTemplate{}, true
	}
	if results == nil {
		results = []models.ExerciseTemplate{}
	}

	if s.cache != nil {
		if err := s.cache.Put(query, results); err != nil {
			s.log.Warn("catalog cache write failed", "query", query, "error", err)
		}
	}
	return results, true
}

func (s *Searcher) current(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.seq
}

// Stop cancels any in-flight search.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
