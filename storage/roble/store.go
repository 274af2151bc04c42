package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	roblesvc "github.com/trezcool/aula/services/roble"
)

// Tables
const (
	CoursesTable     = "courses"
	CategoriesTable  = "category"
	GroupsTable      = "groups"
	ActivitiesTable  = "activities"
	SubmissionsTable = "submissions"
	GradesTable      = "grades"
)

// Store is the table protocol, satisfied by *roblesvc.Database.
type Store interface {
	Read(ctx context.Context, table string, filters ...roblesvc.Filter) ([]json.RawMessage, error)
	Insert(ctx context.Context, table string, record interface{}) (json.RawMessage, error)
	Update(ctx context.Context, table, id string, updates interface{}) error
	Delete(ctx context.Context, table, id string) error
}

var _ Store = (*roblesvc.Database)(nil)

// wrappedIDs is how id lists are written: {"data": [...]}.
type wrappedIDs struct {
	Data []string `json:"data"`
}

func wrapIDs(ids []string) wrappedIDs {
	if ids == nil {
		ids = []string{}
	}
	return wrappedIDs{Data: ids}
}

// decoder turns raw rows into domain values, reporting shape ambiguities instead of failing.
type decoder struct {
	table  string
	logger core.Logger
}

func (d decoder) ids(field string, raw json.RawMessage) []string {
	ids, ok := core.NormalizeIDs(raw)
	if !ok {
		d.ambiguous(field, raw)
	}
	return ids
}

func (d decoder) id(field string, raw json.RawMessage) string {
	s, ok := core.NormalizeString(raw)
	if !ok {
		d.ambiguous(field, raw)
	}
	return core.CleanID(s)
}

func (d decoder) str(field string, raw json.RawMessage) string {
	s, ok := core.NormalizeString(raw)
	if !ok {
		d.ambiguous(field, raw)
	}
	return s
}

func (d decoder) number(field string, raw json.RawMessage) float64 {
	f, ok := core.NormalizeFloat(raw)
	if !ok {
		d.ambiguous(field, raw)
	}
	return f
}

func (d decoder) scores(field string, raw json.RawMessage) map[string]float64 {
	scores, ok := core.NormalizeScores(raw)
	if !ok {
		d.ambiguous(field, raw)
	}
	return scores
}

func (d decoder) ambiguous(field string, raw json.RawMessage) {
	d.logger.Warn("shape ambiguity", map[string]interface{}{
		"table": d.table,
		"field": field,
		"shape": core.DetectShape(raw).String(),
	})
}

// rows decodes every raw row into a map of fields; undecodable rows are reported and skipped.
func (d decoder) rows(raws []json.RawMessage) []map[string]json.RawMessage {
	out := make([]map[string]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		fields, ok := d.row(raw)
		if ok {
			out = append(out, fields)
		}
	}
	return out
}

func (d decoder) row(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		d.ambiguous("row", raw)
		return nil, false
	}
	return fields, true
}

// inserted decodes the row echoed back by an insert.
func (d decoder) inserted(raw json.RawMessage) (map[string]json.RawMessage, error) {
	fields, ok := d.row(raw)
	if !ok {
		return nil, errors.Wrapf(core.ErrContractViolation, "insert into %s: inserted row is not an object", d.table)
	}
	return fields, nil
}
