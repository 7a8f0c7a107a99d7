package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"podium/internal/adapters/storage"
	domain "podium/internal/domain/sheet"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite. Each sheet has one catalog
// row holding its headers as a JSON array and one sheet_row per data row,
// cells stored as a JSON array in header order.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Exists reports whether a sheet with the given name exists.
// PRE: name is non-empty
// POST: Returns true if the sheet is in the catalog
func (s *SQLiteStore) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, domain.ErrEmptyName
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sheet_catalog WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create registers a new sheet with the given header row.
// PRE: name is non-empty, headers is non-empty
// POST: Sheet exists with zero data rows, or ErrAlreadyExists
func (s *SQLiteStore) Create(ctx context.Context, name string, headers []string) error {
	if name == "" {
		return domain.ErrEmptyName
	}
	if len(headers) == 0 {
		return domain.ErrNoHeaders
	}
	headerJSON, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_catalog (name, headers, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, string(headerJSON), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Headers returns the header row of a sheet.
// PRE: name is non-empty
// POST: Returns headers in declared order, or ErrNotFound
func (s *SQLiteStore) Headers(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	var headerJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT headers FROM sheet_catalog WHERE name = ?`, name).Scan(&headerJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var headers []string
	if err := json.Unmarshal([]byte(headerJSON), &headers); err != nil {
		return nil, fmt.Errorf("unmarshal headers for %q: %w", name, err)
	}
	return headers, nil
}

// Append adds a data row to the end of a sheet.
// PRE: the sheet exists; row values align with its headers
// POST: Row is persisted after all existing rows
func (s *SQLiteStore) Append(ctx context.Context, name string, row []string) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	cellJSON, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	// MAX(position)+1 assigns the next slot; concurrent appends are
	// serialized by SQLite's single writer.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet_row (id, sheet_name, position, cells, appended_at)
		 SELECT ?, ?, COALESCE(MAX(position) + 1, 0), ?, ?
		 FROM sheet_row WHERE sheet_name = ?`,
		uuid.New().String(), name, string(cellJSON),
		time.Now().UTC().Format(timeLayout), name)
	return err
}

// ReadAll returns the full sheet: headers plus all data rows in append order.
// PRE: name is non-empty
// POST: Returns the table, or ErrNotFound if the sheet does not exist
func (s *SQLiteStore) ReadAll(ctx context.Context, name string) (domain.Table, error) {
	headers, err := s.Headers(ctx, name)
	if err != nil {
		return domain.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_row WHERE sheet_name = ? ORDER BY position`, name)
	if err != nil {
		return domain.Table{}, err
	}
	defer rows.Close()

	table := domain.Table{Name: name, Headers: headers}
	for rows.Next() {
		var cellJSON string
		if err := rows.Scan(&cellJSON); err != nil {
			return domain.Table{}, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellJSON), &cells); err != nil {
			return domain.Table{}, fmt.Errorf("unmarshal row in %q: %w", name, err)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, rows.Err()
}

// UpdateCell overwrites a single cell of an existing data row.
// PRE: the sheet exists and has a row at rowIndex
// POST: Cell at (rowIndex, colIndex) holds value; row is padded if short
func (s *SQLiteStore) UpdateCell(ctx context.Context, name string, rowIndex, colIndex int, value string) error {
	if name == "" {
		return domain.ErrEmptyName
	}
	if rowIndex < 0 || colIndex < 0 {
		return domain.ErrNotFound
	}

	var id, cellJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, cells FROM sheet_row WHERE sheet_name = ?
		 ORDER BY position LIMIT 1 OFFSET ?`, name, rowIndex).Scan(&id, &cellJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	var cells []string
	if err := json.Unmarshal([]byte(cellJSON), &cells); err != nil {
		return fmt.Errorf("unmarshal row in %q: %w", name, err)
	}
	for len(cells) <= colIndex {
		cells = append(cells, "")
	}
	cells[colIndex] = value

	updated, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE sheet_row SET cells = ? WHERE id = ?`, string(updated), id)
	return err
}

// List returns the names of all sheets in the catalog, sorted.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sheet_catalog ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
