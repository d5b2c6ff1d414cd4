package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesdash/internal/cli"
	"salesdash/internal/core"
	"salesdash/internal/dashboard"
	"salesdash/internal/export"
	"salesdash/internal/format"
	"salesdash/internal/log"
	"salesdash/internal/source/memory"
	"salesdash/internal/storage"
)

func main() {
	branchFlag := flag.String("branch", "", "branch id for -csv imports, e.g. MRS_BRANCH")
	jsonPath := flag.String("json", "", "dataset JSON file to import")
	csvDir := flag.String("csv", "", "directory holding sales.csv, repeat.csv, conversion.csv and renewal.csv")
	target := flag.String("target", "", "destination backend: sqlite, sheets or files (default DATA_BACKEND)")
	xlsxPath := flag.String("xlsx", "", "also write the imported branch summary to this workbook")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)
	if *target != "" {
		cfg.DataBackend = *target
	}

	d, err := loadDataset(*jsonPath, *csvDir, *branchFlag)
	if err != nil {
		logger.Error("Failed to read dataset", log.FieldError, err)
		os.Exit(2)
	}
	logger.Info("Dataset read", log.FieldBranch, d.Branch.String(),
		log.FieldRecords, len(d.Sales)+len(d.RepeatPurchase)+len(d.Conversion)+len(d.Renewal))
	if sum, err := dashboard.Build(d); err == nil {
		logger.Info("Dataset totals", log.FieldBranch, d.Branch.String(),
			"sales", format.Currency(sum.Sales.GrandTotal),
			"repeat_share", format.Percent(sum.Repeat.Share),
			"conversion_rate", format.Percent(sum.Conversion.MeanRate),
			"renewal_rate", format.Percent(sum.Renewal.MeanRate))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := store(ctx, logger, cfg.DataBackend, cfg.DataDir, d, func() error {
		res, err := cli.OpenBackend(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer res.Close()
		return res.Writer.WriteDataset(ctx, d)
	}); err != nil {
		logger.Error("Import failed", log.FieldOperation, log.OpImport, log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	if cfg.DataBackend == "sqlite" {
		reportSchema(ctx, logger, cfg.SQLiteDBPath)
	}

	if *xlsxPath != "" {
		if err := writeWorkbook(*xlsxPath, d); err != nil {
			logger.Error("Workbook export failed", log.FieldError, err, "path", *xlsxPath)
			os.Exit(1)
		}
		logger.Info("Workbook written", "path", *xlsxPath)
	}
}

func loadDataset(jsonPath, csvDir, branchID string) (core.Dataset, error) {
	switch {
	case jsonPath != "" && csvDir != "":
		return core.Dataset{}, fmt.Errorf("use either -json or -csv, not both")
	case jsonPath != "":
		d, err := memory.LoadJSONFile(jsonPath)
		if err != nil {
			return core.Dataset{}, err
		}
		if branchID != "" {
			id, err := core.ParseBranchID(branchID)
			if err != nil {
				return core.Dataset{}, err
			}
			if id != d.Branch {
				return core.Dataset{}, fmt.Errorf("file holds %s, not %s", d.Branch, id)
			}
		}
		return d, nil
	case csvDir != "":
		id, err := core.ParseBranchID(branchID)
		if err != nil {
			return core.Dataset{}, fmt.Errorf("-csv needs -branch: %w", err)
		}
		return memory.LoadCSVDir(id, csvDir)
	}
	return core.Dataset{}, fmt.Errorf("nothing to import: pass -json or -csv")
}

// store writes d to the chosen backend. The files backend is a directory of
// JSON documents, so it is written directly rather than through a reader.
func store(ctx context.Context, logger *log.Logger, kind, dataDir string, d core.Dataset, viaBackend func() error) error {
	switch kind {
	case "sqlite", "sheets":
		if err := viaBackend(); err != nil {
			return err
		}
	case "files":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dataDir, d.Branch.String()+".json")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := memory.EncodeDataset(f, d); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("backend %q cannot be imported into", kind)
	}
	logger.InfoContext(ctx, "Dataset imported", log.FieldOperation, log.OpImport, log.FieldBranch, d.Branch.String(), log.FieldBackend, kind)
	return nil
}

func reportSchema(ctx context.Context, logger *log.Logger, dbPath string) {
	version, dirty, err := storage.SchemaVersion(dbPath)
	if err != nil {
		logger.WarnContext(ctx, "Could not read schema version", log.FieldError, err)
		return
	}
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.WarnContext(ctx, "Could not reopen database", log.FieldError, err)
		return
	}
	defer repo.Close()
	imported, err := repo.ListImported(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Could not list imported branches", log.FieldOperation, log.OpList, log.FieldError, err)
		return
	}
	for _, info := range imported {
		logger.InfoContext(ctx, "Stored branch", log.FieldOperation, log.OpList, log.FieldBranch, info.Branch.String(),
			"imported_at", info.ImportedAt.Format(time.RFC3339))
	}
	logger.InfoContext(ctx, "SQLite schema", "version", version, "dirty", dirty, "branches", len(imported))
}

func writeWorkbook(path string, d core.Dataset) error {
	sum, err := dashboard.Build(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(f, sum); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
