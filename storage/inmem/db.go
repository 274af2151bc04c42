package inmemdb

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrRowNotFound = errors.New("row not found")
)

// Row is a record kept exactly as it was written.
type Row map[string]json.RawMessage

// Get returns field as a string when it is a scalar.
func (r Row) Get(field string) (string, bool) {
	raw, ok := r[field]
	if !ok {
		return "", false
	}
	s, ok := core.NormalizeString(raw)
	return s, ok
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

type table struct {
	mutex sync.RWMutex
	rows  map[string]Row
	order []string
}

// DB is a set of named tables created on first write. Rows are keyed by _id.
type DB struct {
	mutex  sync.Mutex
	tables map[string]*table
	newID  func() string
}

func NewDB(newID func() string) *DB {
	return &DB{tables: make(map[string]*table), newID: newID}
}

func (db *DB) table(name string) *table {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	tbl, ok := db.tables[name]
	if !ok {
		tbl = &table{rows: make(map[string]Row)}
		db.tables[name] = tbl
	}
	return tbl
}

// Tables lists the table names in use.
func (db *DB) Tables() []string {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns, in insertion order, the rows whose scalar fields equal every filter.
func (db *DB) Select(name string, filters map[string]string) []Row {
	tbl := db.table(name)
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make([]Row, 0, len(tbl.order))
	for _, id := range tbl.order {
		row := tbl.rows[id]
		if matches(row, filters) {
			out = append(out, row.clone())
		}
	}
	return out
}

func matches(row Row, filters map[string]string) bool {
	for field, want := range filters {
		got, ok := row.Get(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Insert stores records, assigning a fresh _id to each, and returns the stored rows.
func (db *DB) Insert(name string, records []Row) ([]Row, error) {
	tbl := db.table(name)
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	out := make([]Row, 0, len(records))
	for _, rec := range records {
		row := rec.clone()
		id := db.newID()
		rawID, err := json.Marshal(id)
		if err != nil {
			return nil, errors.Wrap(err, "encoding id")
		}
		row["_id"] = rawID
		tbl.rows[id] = row
		tbl.order = append(tbl.order, id)
		out = append(out, row.clone())
	}
	return out, nil
}

// Update merges updates into the row whose idColumn equals idValue.
func (db *DB) Update(name, idColumn, idValue string, updates Row) (Row, error) {
	tbl := db.table(name)
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	id, ok := tbl.find(idColumn, idValue)
	if !ok {
		return nil, ErrRowNotFound
	}
	row := tbl.rows[id]
	for field, val := range updates {
		if field == "_id" {
			continue
		}
		row[field] = append(json.RawMessage(nil), val...)
	}
	return row.clone(), nil
}

// Delete removes the row whose idColumn equals idValue.
func (db *DB) Delete(name, idColumn, idValue string) error {
	tbl := db.table(name)
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	id, ok := tbl.find(idColumn, idValue)
	if !ok {
		return ErrRowNotFound
	}
	delete(tbl.rows, id)
	for i, oid := range tbl.order {
		if oid == id {
			tbl.order = append(tbl.order[:i], tbl.order[i+1:]...)
			break
		}
	}
	return nil
}

// find must be called with the table lock held.
func (tbl *table) find(idColumn, idValue string) (string, bool) {
	if idColumn == "" || idColumn == "_id" {
		_, ok := tbl.rows[idValue]
		return idValue, ok
	}
	for _, id := range tbl.order {
		if got, ok := tbl.rows[id].Get(idColumn); ok && got == idValue {
			return id, true
		}
	}
	return "", false
}
