// Package dashboard turns a branch dataset into the figures the dashboard
// renders: month cards, per-company rows and sortable tables.
package dashboard

import (
	"context"
	"time"

	"salesdash/internal/branch"
	"salesdash/internal/cache"
	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/table"
)

// Service builds summaries from a registry and memoizes them.
type Service struct {
	registry *branch.Registry
	cache    cache.Cache[Summary]
	logger   *log.Logger
}

type Option func(*Service)

// WithCache replaces the default summary cache.
func WithCache(c cache.Cache[Summary]) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(registry *branch.Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		cache:    cache.NewLRUCache[Summary](16, 5*time.Minute),
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentDashboard)
	return s
}

// Cache exposes the summary cache for its statistics.
func (s *Service) Cache() cache.Cache[Summary] {
	return s.cache
}

func (s *Service) Registry() *branch.Registry {
	return s.registry
}

// Summary returns the summary of id, or core.ErrUnknownBranch.
func (s *Service) Summary(ctx context.Context, id core.BranchID) (Summary, error) {
	sum, hit, err := s.cache.GetOrCompute(id.String(), func() (Summary, error) {
		d, err := s.registry.Get(id)
		if err != nil {
			return Summary{}, err
		}
		return Build(d)
	})
	if err != nil {
		return Summary{}, err
	}
	s.logger.DebugContext(ctx, "summary served", log.FieldBranch, id.String(), log.FieldCacheHit, hit)
	return sum, nil
}

// Summaries returns every loaded branch in display order.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	branches := s.registry.List()
	out := make([]Summary, 0, len(branches))
	for _, b := range branches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sum, err := s.Summary(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) SalesTable(ctx context.Context, id core.BranchID, state table.State) ([]SalesRow, error) {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return sortSales(sum.SalesRows, state), nil
}

func (s *Service) RepeatTable(ctx context.Context, id core.BranchID, state table.State) ([]RepeatRow, error) {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return sortRepeat(sum.RepeatRows, state), nil
}

func (s *Service) ConversionTable(ctx context.Context, id core.BranchID, state table.State) ([]LeadRow, error) {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return sortLeads(sum.ConversionRows, state), nil
}

func (s *Service) RenewalTable(ctx context.Context, id core.BranchID, state table.State) ([]LeadRow, error) {
	sum, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return sortLeads(sum.RenewalRows, state), nil
}

// Table returns the rows of name sorted by state, for callers that pick the
// table at run time.
func (s *Service) Table(ctx context.Context, id core.BranchID, name TableName, state table.State) (any, error) {
	if err := ValidateSort(name, state); err != nil {
		return nil, err
	}
	switch name {
	case SalesTable:
		return s.SalesTable(ctx, id, state)
	case RepeatTable:
		return s.RepeatTable(ctx, id, state)
	case ConversionTable:
		return s.ConversionTable(ctx, id, state)
	case RenewalTable:
		return s.RenewalTable(ctx, id, state)
	}
	return nil, ErrUnknownTable
}
