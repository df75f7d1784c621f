package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
	"lawgraph-backend/repository"
)

// minSearchRunes is the shortest query the search endpoint accepts.
const minSearchRunes = 3

// SectionService handles business logic for section lookup, graph
// visualization and fulltext search
type SectionService struct {
	store repository.GraphStore
}

// SectionServiceOption is a functional option for SectionService
type SectionServiceOption func(*SectionService)

// SectionWithGraphStore sets the graph store
func SectionWithGraphStore(store repository.GraphStore) SectionServiceOption {
	return func(s *SectionService) {
		s.store = store
	}
}

// NewSectionService creates a new section service
func NewSectionService(opts ...SectionServiceOption) *SectionService {
	s := &SectionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSectionRequest represents a request to fetch one section
type GetSectionRequest struct {
	SectionID string
}

// GetSectionResult represents the result of fetching one section
type GetSectionResult struct {
	Section *models.Section
}

// GetSection retrieves the full section node by id
func (s *SectionService) GetSection(ctx context.Context, req GetSectionRequest) (*GetSectionResult, error) {
	if s.store == nil {
		return nil, errors.New("graph store not set")
	}

	section, err := s.store.SectionByID(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	return &GetSectionResult{Section: section}, nil
}

// GetGraphRequest represents a request for a section's neighborhood graph
type GetGraphRequest struct {
	SectionID string
}

// GetGraphResult represents the result of building a neighborhood graph
type GetGraphResult struct {
	Graph models.GraphView
}

// GetGraph fetches the one-hop neighborhood of a section and flattens it
// into the visualization structure
func (s *SectionService) GetGraph(ctx context.Context, req GetGraphRequest) (*GetGraphResult, error) {
	if s.store == nil {
		return nil, errors.New("graph store not set")
	}

	neighborhood, err := s.store.SectionNeighborhood(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	return &GetGraphResult{Graph: buildGraphView(req.SectionID, neighborhood)}, nil
}

// SearchSectionsRequest represents a standalone fulltext search request
type SearchSectionsRequest struct {
	Query string
}

// SearchSectionsResult represents the result of a fulltext search
type SearchSectionsResult struct {
	Results []models.SearchResult
}

// SearchSections runs the raw query against the fulltext index. Queries
// shorter than three characters are rejected.
func (s *SectionService) SearchSections(ctx context.Context, req SearchSectionsRequest) (*SearchSectionsResult, error) {
	if s.store == nil {
		return nil, errors.New("graph store not set")
	}

	if utf8.RuneCountInString(req.Query) < minSearchRunes {
		return nil, fmt.Errorf("%w: query must be at least %d characters", internalerr.ErrInvalidInput, minSearchRunes)
	}

	results, err := s.store.SearchSections(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	return &SearchSectionsResult{Results: nonNil(results)}, nil
}

// Ping reports whether the underlying graph store answers
func (s *SectionService) Ping(ctx context.Context) error {
	if s.store == nil {
		return errors.New("graph store not set")
	}
	return s.store.Ping(ctx)
}
