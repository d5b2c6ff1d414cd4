// Package branch keeps the per-branch datasets loaded at start-up and
// answers lookups by branch id.
package branch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/core"
	"salesdash/internal/source"
)

// Policy decides what an unrecognised branch id resolves to.
type Policy string

const (
	PolicyFallback Policy = "fallback"
	PolicyStrict   Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFallback, PolicyStrict:
		return p, nil
	case "":
		return PolicyFallback, nil
	}
	return "", fmt.Errorf("unknown branch policy %q", s)
}

// ErrNoDefault is returned by Load when the default branch has no data.
var ErrNoDefault = errors.New("default branch has no data")

// Info is one entry of List.
type Info struct {
	ID    core.BranchID `json:"id"`
	Label string        `json:"label"`
}

// Registry is an immutable snapshot of every loaded branch.
type Registry struct {
	datasets map[core.BranchID]core.Dataset
}

// Load reads every branch from r concurrently. Branches the source does not
// know about are skipped; the default branch must be present.
func Load(ctx context.Context, r source.DatasetReader) (*Registry, error) {
	var (
		mu       sync.Mutex
		datasets = make(map[core.BranchID]core.Dataset)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range core.Branches() {
		g.Go(func() error {
			d, err := r.ReadDataset(gctx, id)
			if errors.Is(err, core.ErrUnknownBranch) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", id, err)
			}
			if d.Branch != id {
				return fmt.Errorf("read %s: source returned %s", id, d.Branch)
			}
			if err := d.Validate(); err != nil {
				return fmt.Errorf("validate %s: %w", id, err)
			}
			mu.Lock()
			datasets[id] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if _, ok := datasets[core.DefaultBranch]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDefault, core.DefaultBranch)
	}
	return &Registry{datasets: datasets}, nil
}

// New builds a registry from datasets already in hand.
func New(datasets ...core.Dataset) (*Registry, error) {
	m := make(map[core.BranchID]core.Dataset, len(datasets))
	var errs []error
	for _, d := range datasets {
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("validate %s: %w", d.Branch, err))
			continue
		}
		m[d.Branch] = d.Clone()
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if _, ok := m[core.DefaultBranch]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDefault, core.DefaultBranch)
	}
	return &Registry{datasets: m}, nil
}

// List returns the loaded branches in their fixed display order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.datasets))
	for _, id := range core.Branches() {
		if _, ok := r.datasets[id]; ok {
			out = append(out, Info{ID: id, Label: id.Label()})
		}
	}
	return out
}

// Get returns a copy of the dataset for id.
func (r *Registry) Get(id core.BranchID) (core.Dataset, error) {
	d, ok := r.datasets[id]
	if !ok {
		return core.Dataset{}, fmt.Errorf("%w: %s", core.ErrUnknownBranch, id)
	}
	return d.Clone(), nil
}

// GetOrDefault returns the dataset for id, or the default branch's dataset
// when id is unknown. The second result reports whether the fallback was used.
func (r *Registry) GetOrDefault(id core.BranchID) (core.Dataset, bool) {
	if d, err := r.Get(id); err == nil {
		return d, false
	}
	return r.datasets[core.DefaultBranch].Clone(), true
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Requested string
	Branch    core.BranchID
	Fallback  bool
}

// Resolve maps a raw branch id from a request to a loaded branch under policy.
func (r *Registry) Resolve(raw string, policy Policy) (Resolution, error) {
	res := Resolution{Requested: raw}
	id, err := core.ParseBranchID(raw)
	if err == nil {
		if _, ok := r.datasets[id]; ok {
			res.Branch = id
			return res, nil
		}
		err = fmt.Errorf("%w: %s", core.ErrUnknownBranch, id)
	}
	if policy == PolicyStrict {
		return res, err
	}
	res.Branch = core.DefaultBranch
	res.Fallback = true
	return res, nil
}
