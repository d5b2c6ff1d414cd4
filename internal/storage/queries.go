package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type BranchDataset struct {
	Branch     string
	ImportedAt string
}

type MonthlyAmount struct {
	Family      string
	Position    int64
	Company     string
	Month       string
	AmountCents int64
}

type MonthlyLead struct {
	Kind     string
	Position int64
	Company  string
	Month    string
	Received int64
	Closed   int64
}

const getBranchDataset = `SELECT branch, imported_at FROM branch_datasets WHERE branch = ?`

func (q *Queries) GetBranchDataset(ctx context.Context, branch string) (BranchDataset, error) {
	row := q.db.QueryRowContext(ctx, getBranchDataset, branch)
	var i BranchDataset
	err := row.Scan(&i.Branch, &i.ImportedAt)
	return i, err
}

const listBranchDatasets = `SELECT branch, imported_at FROM branch_datasets ORDER BY branch`

func (q *Queries) ListBranchDatasets(ctx context.Context) ([]BranchDataset, error) {
	rows, err := q.db.QueryContext(ctx, listBranchDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BranchDataset
	for rows.Next() {
		var i BranchDataset
		if err := rows.Scan(&i.Branch, &i.ImportedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertBranchDataset = `INSERT INTO branch_datasets (branch, imported_at) VALUES (?, ?)
ON CONFLICT(branch) DO UPDATE SET imported_at = excluded.imported_at`

func (q *Queries) UpsertBranchDataset(ctx context.Context, branch, importedAt string) error {
	_, err := q.db.ExecContext(ctx, upsertBranchDataset, branch, importedAt)
	return err
}

const deleteBranchAmounts = `DELETE FROM monthly_amounts WHERE branch = ?`

func (q *Queries) DeleteBranchAmounts(ctx context.Context, branch string) error {
	_, err := q.db.ExecContext(ctx, deleteBranchAmounts, branch)
	return err
}

const deleteBranchLeads = `DELETE FROM monthly_leads WHERE branch = ?`

func (q *Queries) DeleteBranchLeads(ctx context.Context, branch string) error {
	_, err := q.db.ExecContext(ctx, deleteBranchLeads, branch)
	return err
}

const insertMonthlyAmount = `INSERT INTO monthly_amounts (branch, family, position, company, month, amount_cents)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertMonthlyAmount(ctx context.Context, branch string, a MonthlyAmount) error {
	_, err := q.db.ExecContext(ctx, insertMonthlyAmount, branch, a.Family, a.Position, a.Company, a.Month, a.AmountCents)
	return err
}

const insertMonthlyLead = `INSERT INTO monthly_leads (branch, kind, position, company, month, received, closed)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertMonthlyLead(ctx context.Context, branch string, l MonthlyLead) error {
	_, err := q.db.ExecContext(ctx, insertMonthlyLead, branch, l.Kind, l.Position, l.Company, l.Month, l.Received, l.Closed)
	return err
}

const listMonthlyAmounts = `SELECT family, position, company, month, amount_cents
FROM monthly_amounts WHERE branch = ? ORDER BY family, position`

func (q *Queries) ListMonthlyAmounts(ctx context.Context, branch string) ([]MonthlyAmount, error) {
	rows, err := q.db.QueryContext(ctx, listMonthlyAmounts, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlyAmount
	for rows.Next() {
		var i MonthlyAmount
		if err := rows.Scan(&i.Family, &i.Position, &i.Company, &i.Month, &i.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listMonthlyLeads = `SELECT kind, position, company, month, received, closed
FROM monthly_leads WHERE branch = ? ORDER BY kind, position`

func (q *Queries) ListMonthlyLeads(ctx context.Context, branch string) ([]MonthlyLead, error) {
	rows, err := q.db.QueryContext(ctx, listMonthlyLeads, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlyLead
	for rows.Next() {
		var i MonthlyLead
		if err := rows.Scan(&i.Kind, &i.Position, &i.Company, &i.Month, &i.Received, &i.Closed); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
