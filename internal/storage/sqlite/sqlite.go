// Package sqlite implements the transaction store on an embedded SQLite
// database. Dates are stored as ISO-8601 text so range comparisons stay
// lexicographic.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Repository struct {
	db *sql.DB
}

var _ storage.Repository = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// buildWhere translates filter criteria into a WHERE clause and its
// arguments. The category match escapes LIKE metacharacters so the search
// string is treated literally.
func buildWhere(f core.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.HasType() {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		conds = append(conds, `category LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Category)+"%")
	}
	if !f.StartDate.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.Format(core.DateLayout))
	}
	if !f.EndDate.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.Format(core.DateLayout))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (r *Repository) List(ctx context.Context, f core.Filter) ([]core.Transaction, int64, error) {
	where, args := buildWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	skip, take := f.Window()
	query := "SELECT id, type, amount, description, category, date, created_at, updated_at FROM transactions" +
		where + " ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, take, skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	items := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, total, nil
}

func (r *Repository) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount, description, category, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(tx.Type), tx.Amount, tx.Description, tx.Category,
		tx.Date.Format(core.DateLayout), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	return r.Get(ctx, strconv.FormatInt(id, 10))
}

func (r *Repository) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, error) {
	rowID, err := parseID(id)
	if err != nil {
		return core.Transaction{}, storage.ErrNotFound
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*p.Type))
	}
	if p.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *p.Amount)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, p.Date.Format(core.DateLayout))
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		append(args, rowID)...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, storage.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	rowID, err := parseID(id)
	if err != nil {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", rowID)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	rowID, err := parseID(id)
	if err != nil {
		return core.Transaction{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, amount, description, category, date, created_at, updated_at
		 FROM transactions WHERE id = ?`, rowID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx                          core.Transaction
		rowID                       int64
		typ, date, created, updated string
	)
	if err := row.Scan(&rowID, &typ, &tx.Amount, &tx.Description, &tx.Category, &date, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.ID = strconv.FormatInt(rowID, 10)
	tx.Type = core.TransactionType(typ)

	var err error
	if tx.Date, err = time.Parse(core.DateLayout, date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if tx.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return tx, nil
}
