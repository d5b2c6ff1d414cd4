package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"salesdash/internal/core"
)

// Store serves datasets held in memory.
type Store struct {
	mu       sync.RWMutex
	datasets map[core.BranchID]core.Dataset
}

func New(datasets ...core.Dataset) *Store {
	s := &Store{datasets: make(map[core.BranchID]core.Dataset, len(datasets))}
	for _, d := range datasets {
		s.datasets[d.Branch] = d.Clone()
	}
	return s
}

// NewBuiltin serves the reference figures compiled into the binary.
func NewBuiltin() *Store {
	return New(Builtin()...)
}

// NewFromDir loads each branch from dir. A branch is read from
// <BRANCH_ID>.json if present, otherwise from a <BRANCH_ID>/ directory of
// CSV files, otherwise the built-in figures are used.
func NewFromDir(dir string) (*Store, error) {
	builtin := make(map[core.BranchID]core.Dataset)
	for _, d := range Builtin() {
		builtin[d.Branch] = d
	}

	var datasets []core.Dataset
	for _, b := range core.Branches() {
		jsonPath := filepath.Join(dir, b.String()+".json")
		csvDir := filepath.Join(dir, b.String())
		switch {
		case fileExists(jsonPath):
			d, err := LoadJSONFile(jsonPath)
			if err != nil {
				return nil, err
			}
			if d.Branch != b {
				return nil, fmt.Errorf("%s: file declares branch %s", jsonPath, d.Branch)
			}
			datasets = append(datasets, d)
		case dirExists(csvDir):
			d, err := LoadCSVDir(b, csvDir)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, d)
		default:
			datasets = append(datasets, builtin[b])
		}
	}
	return New(datasets...), nil
}

// ReadDataset returns a copy of the branch dataset.
func (s *Store) ReadDataset(_ context.Context, branch core.BranchID) (core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[branch]
	if !ok {
		return core.Dataset{}, fmt.Errorf("%w: %s", core.ErrUnknownBranch, branch)
	}
	return d.Clone(), nil
}

// WriteDataset validates and replaces the branch dataset.
func (s *Store) WriteDataset(_ context.Context, d core.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.Branch] = d.Clone()
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && info.IsDir()
}
