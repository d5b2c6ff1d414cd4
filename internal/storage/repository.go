package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/source"

	_ "modernc.org/sqlite"
)

const (
	familySales  = "sales"
	familyRepeat = "repeat"
)

// SQLiteRepository stores imported branch datasets. The dashboard only
// reads from it; WriteDataset is used by the import command.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var (
	_ source.DatasetReader = (*SQLiteRepository)(nil)
	_ source.DatasetWriter = (*SQLiteRepository)(nil)
)

// ImportInfo describes one stored branch.
type ImportInfo struct {
	Branch     core.BranchID
	ImportedAt time.Time
}

// WithLogger replaces the repository's logger.
func (r *SQLiteRepository) WithLogger(l *log.Logger) *SQLiteRepository {
	r.logger = l.WithComponent(log.ComponentStorage)
	return r
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  log.FromContext(context.Background()).WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadDataset rebuilds a branch dataset in its stored display order.
func (r *SQLiteRepository) ReadDataset(ctx context.Context, branch core.BranchID) (core.Dataset, error) {
	if _, err := r.queries.GetBranchDataset(ctx, branch.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Dataset{}, fmt.Errorf("%w: %s not imported", core.ErrUnknownBranch, branch)
		}
		return core.Dataset{}, fmt.Errorf("get branch %s: %w", branch, err)
	}

	amounts, err := r.queries.ListMonthlyAmounts(ctx, branch.String())
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list amounts: %w", err)
	}
	leads, err := r.queries.ListMonthlyLeads(ctx, branch.String())
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list leads: %w", err)
	}

	d := core.Dataset{Branch: branch}
	salesRows, repeatRows, err := groupAmounts(amounts)
	if err != nil {
		return core.Dataset{}, err
	}
	for _, g := range salesRows {
		d.Sales = append(d.Sales, core.SalesRecord{Company: g.company, May: g.values[0], June: g.values[1], July: g.values[2]})
	}
	for _, g := range repeatRows {
		d.RepeatPurchase = append(d.RepeatPurchase, core.RepeatPurchaseRecord{Company: g.company, May: g.values[0], June: g.values[1], July: g.values[2]})
	}
	newRows, renewalRows, err := groupLeads(leads)
	if err != nil {
		return core.Dataset{}, err
	}
	for _, g := range newRows {
		d.Conversion = append(d.Conversion, core.ConversionRecord{Company: g.company, May: g.values[0], June: g.values[1], July: g.values[2]})
	}
	for _, g := range renewalRows {
		d.Renewal = append(d.Renewal, core.RenewalRecord{Company: g.company, May: g.values[0], June: g.values[1], July: g.values[2]})
	}

	r.logger.DebugContext(ctx, "Dataset loaded from SQLite",
		log.FieldOperation, log.OpRead,
		log.FieldBranch, branch.String(),
		"sales_rows", len(d.Sales),
		"lead_rows", len(d.Conversion)+len(d.Renewal))
	return d, nil
}

// WriteDataset replaces everything stored for the branch in one transaction.
func (r *SQLiteRepository) WriteDataset(ctx context.Context, d core.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	branch := d.Branch.String()
	if err := q.UpsertBranchDataset(ctx, branch, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert branch: %w", err)
	}
	if err := q.DeleteBranchAmounts(ctx, branch); err != nil {
		return fmt.Errorf("delete amounts: %w", err)
	}
	if err := q.DeleteBranchLeads(ctx, branch); err != nil {
		return fmt.Errorf("delete leads: %w", err)
	}

	for i, rec := range d.Sales {
		if err := insertAmounts(ctx, q, branch, familySales, i, rec); err != nil {
			return err
		}
	}
	for i, rec := range d.RepeatPurchase {
		if err := insertAmounts(ctx, q, branch, familyRepeat, i, rec); err != nil {
			return err
		}
	}
	for i, rec := range d.Conversion {
		if err := insertLeads(ctx, q, branch, i, rec); err != nil {
			return err
		}
	}
	for i, rec := range d.Renewal {
		if err := insertLeads(ctx, q, branch, i, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Dataset imported into SQLite",
		log.FieldOperation, log.OpImport,
		log.FieldBranch, branch,
		log.FieldRecords, len(d.Sales))
	return nil
}

// ListImported reports which branches have data and when they were imported.
func (r *SQLiteRepository) ListImported(ctx context.Context) ([]ImportInfo, error) {
	rows, err := r.queries.ListBranchDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]ImportInfo, 0, len(rows))
	for _, row := range rows {
		id, err := core.ParseBranchID(row.Branch)
		if err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, row.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("parse imported_at for %s: %w", row.Branch, err)
		}
		out = append(out, ImportInfo{Branch: id, ImportedAt: at})
	}
	return out, nil
}

func insertAmounts(ctx context.Context, q *Queries, branch, family string, pos int, rec core.AmountRecord) error {
	for _, m := range core.Months() {
		err := q.InsertMonthlyAmount(ctx, branch, MonthlyAmount{
			Family:      family,
			Position:    int64(pos),
			Company:     rec.Name(),
			Month:       m.String(),
			AmountCents: rec.Amount(m).Cents,
		})
		if err != nil {
			return fmt.Errorf("insert %s amount %q %s: %w", family, rec.Name(), m, err)
		}
	}
	return nil
}

func insertLeads(ctx context.Context, q *Queries, branch string, pos int, rec core.LeadRecord) error {
	for _, m := range core.Months() {
		c := rec.Leads(m)
		err := q.InsertMonthlyLead(ctx, branch, MonthlyLead{
			Kind:     rec.Kind().String(),
			Position: int64(pos),
			Company:  rec.Name(),
			Month:    m.String(),
			Received: int64(c.Received),
			Closed:   int64(c.Closed),
		})
		if err != nil {
			return fmt.Errorf("insert %s leads %q %s: %w", rec.Kind(), rec.Name(), m, err)
		}
	}
	return nil
}

type grouped[T any] struct {
	company string
	values  [3]T
}

// groupRows folds one-row-per-month results back into per-company rows,
// keeping the order rows arrive in (ORDER BY position).
func groupRows[T any](n int, key func(i int) (group string, pos int64, company, month string), value func(i int) T) (map[string][]grouped[T], error) {
	out := make(map[string][]grouped[T])
	index := make(map[string]map[int64]int)
	for i := 0; i < n; i++ {
		group, pos, company, month := key(i)
		m, err := core.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		if index[group] == nil {
			index[group] = make(map[int64]int)
		}
		at, ok := index[group][pos]
		if !ok {
			out[group] = append(out[group], grouped[T]{company: company})
			at = len(out[group]) - 1
			index[group][pos] = at
		}
		out[group][at].values[int(m)-1] = value(i)
	}
	return out, nil
}

func groupAmounts(rows []MonthlyAmount) (sales, repeat []grouped[core.Money], err error) {
	g, err := groupRows(len(rows),
		func(i int) (string, int64, string, string) {
			return rows[i].Family, rows[i].Position, rows[i].Company, rows[i].Month
		},
		func(i int) core.Money { return core.Money{Cents: rows[i].AmountCents} })
	if err != nil {
		return nil, nil, err
	}
	return g[familySales], g[familyRepeat], nil
}

func groupLeads(rows []MonthlyLead) (newLeads, renewals []grouped[core.LeadCounts], err error) {
	g, err := groupRows(len(rows),
		func(i int) (string, int64, string, string) {
			return rows[i].Kind, rows[i].Position, rows[i].Company, rows[i].Month
		},
		func(i int) core.LeadCounts {
			return core.LeadCounts{Received: int(rows[i].Received), Closed: int(rows[i].Closed)}
		})
	if err != nil {
		return nil, nil, err
	}
	return g[core.NewLead.String()], g[core.Renewal.String()], nil
}
