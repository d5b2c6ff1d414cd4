package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/source/memory"
)

func writeJSON(t *testing.T, dir string, d core.Dataset) string {
	t.Helper()
	path := filepath.Join(dir, d.Branch.String()+".json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := memory.EncodeDataset(f, d); err != nil {
		t.Fatalf("EncodeDataset: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	rs3 := memory.Builtin()[1]
	path := writeJSON(t, t.TempDir(), rs3)

	tests := []struct {
		name    string
		json    string
		csv     string
		branch  string
		wantErr bool
	}{
		{name: "json", json: path},
		{name: "json with matching branch", json: path, branch: "rs3_branch"},
		{name: "json with other branch", json: path, branch: "MRS_BRANCH", wantErr: true},
		{name: "both sources", json: path, csv: "x", wantErr: true},
		{name: "csv without branch", csv: t.TempDir(), wantErr: true},
		{name: "nothing", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := loadDataset(tt.json, tt.csv, tt.branch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadDataset() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Branch != core.RS3Branch {
				t.Errorf("Branch = %v, want RS3", d.Branch)
			}
		})
	}
}

func TestStore(t *testing.T) {
	d := memory.Builtin()[2]
	ctx := context.Background()

	t.Run("files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		if err := store(ctx, log.Discard(), "files", dir, d, nil); err != nil {
			t.Fatalf("store: %v", err)
		}
		got, err := memory.LoadJSONFile(filepath.Join(dir, "RPK_BRANCH.json"))
		if err != nil {
			t.Fatalf("LoadJSONFile: %v", err)
		}
		if got.Branch != core.RPKBranch || len(got.Sales) != len(d.Sales) {
			t.Errorf("round trip lost data: %+v", got)
		}
	})

	t.Run("backend writer", func(t *testing.T) {
		called := false
		err := store(ctx, log.Discard(), "sqlite", "", d, func() error {
			called = true
			return nil
		})
		if err != nil || !called {
			t.Fatalf("store err=%v called=%v", err, called)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		boom := errors.New("boom")
		if err := store(ctx, log.Discard(), "sheets", "", d, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("store err = %v, want boom", err)
		}
	})

	t.Run("memory rejected", func(t *testing.T) {
		if err := store(ctx, log.Discard(), "memory", "", d, nil); err == nil {
			t.Fatal("expected error for memory target")
		}
	})
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "mrs.xlsx")
	if err := writeWorkbook(path, memory.Builtin()[0]); err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("workbook not written: %v", err)
	}
}
