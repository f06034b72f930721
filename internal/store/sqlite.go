package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSchemaMismatch is returned by Open when the todos table has an
// unexpected shape and recreation has been opted out of.
var ErrSchemaMismatch = errors.New("todos table schema mismatch")

const createTodosTable = `
CREATE TABLE todos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date DATE,
  title TEXT,
  description TEXT
)`

// expectedColumns is the shape Open verifies, in column order.
var expectedColumns = []string{"id", "date", "title", "description"}

// Options controls how Open treats an existing database.
type Options struct {
	// RecreateOnMismatch drops and recreates the todos table when its shape
	// is wrong. Existing rows are lost. When false, Open returns
	// ErrSchemaMismatch instead.
	RecreateOnMismatch bool
	Logger             *slog.Logger
}

// DefaultOptions recreates mismatched tables, matching the behaviour of the
// desktop build this database format comes from.
func DefaultOptions() Options {
	return Options{RecreateOnMismatch: true}
}

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
	path string
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Open creates or opens the SQLite database at the given path and verifies
// the todos table, repairing it according to opts.
func Open(dbPath string, opts Options) (*DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		logger.Info("database does not exist, it will be created", "path", dbPath)
	} else {
		logger.Info("database found", "path", dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // one writer, one control thread

	if err := ensureSchema(db, opts.RecreateOnMismatch, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{DB: db, path: dbPath}, nil
}

type columnInfo struct {
	name string
	typ  string
	pk   int
}

// tableColumns reads pragma_table_info for table. It closes the rows cursor
// before returning so it is safe with MaxOpenConns(1).
func tableColumns(db *sql.DB, table string) ([]columnInfo, error) {
	rows, err := db.Query(
		fmt.Sprintf("SELECT name, type, pk FROM pragma_table_info('%s') ORDER BY cid", table),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var c columnInfo
		if err := rows.Scan(&c.name, &c.typ, &c.pk); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func columnNames(cols []columnInfo) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// shapeMatches reports whether cols is exactly id, date, title, description
// with id as the INTEGER primary key.
func shapeMatches(cols []columnInfo) bool {
	if len(cols) != len(expectedColumns) {
		return false
	}
	for i, c := range cols {
		if !strings.EqualFold(c.name, expectedColumns[i]) {
			return false
		}
	}
	return strings.EqualFold(cols[0].typ, "INTEGER") && cols[0].pk == 1
}

// isLegacyShape matches the desktop build's table, which named the title
// column "todo".
func isLegacyShape(cols []columnInfo) bool {
	if len(cols) != len(expectedColumns) {
		return false
	}
	return strings.EqualFold(cols[0].name, "id") &&
		strings.EqualFold(cols[0].typ, "INTEGER") && cols[0].pk == 1 &&
		strings.EqualFold(cols[1].name, "date") &&
		strings.EqualFold(cols[2].name, "todo") &&
		strings.EqualFold(cols[3].name, "description")
}

func ensureSchema(db *sql.DB, recreate bool, logger *slog.Logger) error {
	cols, err := tableColumns(db, "todos")
	if err != nil {
		return fmt.Errorf("read todos schema: %w", err)
	}

	switch {
	case len(cols) == 0:
		logger.Info("creating todos table")
		if _, err := db.Exec(createTodosTable); err != nil {
			return fmt.Errorf("create todos table: %w", err)
		}
		return nil

	case shapeMatches(cols):
		logger.Debug("todos table already has the expected schema")
		return nil

	case isLegacyShape(cols):
		logger.Info("renaming legacy todos.todo column to title")
		if _, err := db.Exec(`ALTER TABLE todos RENAME COLUMN todo TO title`); err != nil {
			return fmt.Errorf("rename legacy column: %w", err)
		}
		return nil
	}

	if !recreate {
		return fmt.Errorf("%w: found columns %v", ErrSchemaMismatch, columnNames(cols))
	}

	// Destructive: every existing row in todos is discarded.
	logger.Warn("recreating todos table, existing rows will be lost",
		"found_columns", columnNames(cols),
		"expected_columns", expectedColumns,
	)
	if _, err := db.Exec(`DROP TABLE IF EXISTS todos`); err != nil {
		return fmt.Errorf("drop todos table: %w", err)
	}
	if _, err := db.Exec(createTodosTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}
