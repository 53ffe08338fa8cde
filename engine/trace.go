package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// TraceSink records the order callbacks fire in, independent of the
// in-process callback registry. It exists so the resumability
// property test (spec.md §8 property 1) can diff callback order
// across a single-shot parse and a parse fed in arbitrary chunk
// splits using a durable, queryable record rather than trusting two
// in-memory slices not to have been mutated by the test itself.
type TraceSink interface {
	// RecordCallback is invoked immediately after a callback fires,
	// in the same order callbacks fire in.
	RecordCallback(seq int, rtnName string, offset int) error

	// Close releases any resources the sink holds.
	Close() error
}

// sqliteTraceSink is a TraceSink backed by a pure-Go SQLite database,
// the same role modernc.org/sqlite plays for the teacher's
// server/dao persistence layer, repurposed here for trace capture
// instead of game-entity storage.
type sqliteTraceSink struct {
	db  *sql.DB
	seq int
}

func newSQLiteTraceSink(path string) (*sqliteTraceSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("engine: opening trace db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS callback_trace (
		seq INTEGER PRIMARY KEY,
		rtn_name TEXT NOT NULL,
		offset INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: creating trace table: %w", err)
	}

	return &sqliteTraceSink{db: db}, nil
}

func (t *sqliteTraceSink) RecordCallback(seq int, rtnName string, offset int) error {
	_, err := t.db.Exec(`INSERT INTO callback_trace (seq, rtn_name, offset) VALUES (?, ?, ?)`, seq, rtnName, offset)
	return err
}

func (t *sqliteTraceSink) Close() error {
	return t.db.Close()
}

// TraceEntry is one recorded callback firing, as read back by
// ReadTrace.
type TraceEntry struct {
	Seq     int
	RTNName string
	Offset  int
}

// ReadTrace opens the sqlite database at path and returns every
// recorded callback firing in sequence order. It is used to diff
// callback order between two independently-driven parses of the same
// input, such as a one-shot parse against the same input fed in
// arbitrary chunk splits (spec.md §8 property 1).
func ReadTrace(path string) ([]TraceEntry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("engine: opening trace db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT seq, rtn_name, offset FROM callback_trace ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("engine: querying trace db: %w", err)
	}
	defer rows.Close()

	var entries []TraceEntry
	for rows.Next() {
		var e TraceEntry
		if err := rows.Scan(&e.Seq, &e.RTNName, &e.Offset); err != nil {
			return nil, fmt.Errorf("engine: scanning trace row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
