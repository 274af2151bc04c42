package roblesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

// IDColumn is the primary key column of every table.
const IDColumn = "_id"

// Filter is an equality condition of a read.
type Filter struct {
	Field string
	Value string
}

func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// Database speaks the generic table protocol at <databaseURL>/<projectId>.
type Database struct {
	baseURL string
	exec    *Executor
	logger  core.Logger
}

func NewDatabase(baseURL string, exec *Executor, logger core.Logger) *Database {
	return &Database{baseURL: strings.TrimRight(baseURL, "/"), exec: exec, logger: logger}
}

type (
	insertBody struct {
		TableName string        `json:"tableName"`
		Records   []interface{} `json:"records"`
	}

	insertResult struct {
		Inserted []json.RawMessage `json:"inserted"`
	}

	updateBody struct {
		TableName string      `json:"tableName"`
		IDColumn  string      `json:"idColumn"`
		IDValue   string      `json:"idValue"`
		Updates   interface{} `json:"updates"`
	}

	deleteBody struct {
		TableName string `json:"tableName"`
		IDColumn  string `json:"idColumn"`
		IDValue   string `json:"idValue"`
	}
)

// Read returns the rows of table matching every filter.
// A body that is not a JSON array is reported and read as no rows.
func (db *Database) Read(ctx context.Context, table string, filters ...Filter) ([]json.RawMessage, error) {
	q := make(url.Values, len(filters)+1)
	q.Set("tableName", table)
	for _, f := range filters {
		q.Set(f.Field, f.Value)
	}
	req, err := jsonRequest(http.MethodGet, db.baseURL+"/read?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := db.exec.Do(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", table)
	}
	if !resp.OK() {
		return nil, core.NewHTTPError("read "+table, resp.StatusCode, resp.Body)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '[' {
		db.logger.Warn("read answered with a non-list body", map[string]interface{}{
			"table": table,
			"shape": core.DetectShape(body).String(),
		})
		return []json.RawMessage{}, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		db.logger.Warn("read answered with an undecodable list", err, map[string]interface{}{"table": table})
		return []json.RawMessage{}, nil
	}
	return rows, nil
}

// Insert writes one record and returns the row echoed back by the backend.
func (db *Database) Insert(ctx context.Context, table string, record interface{}) (json.RawMessage, error) {
	req, err := jsonRequest(http.MethodPost, db.baseURL+"/insert", insertBody{TableName: table, Records: []interface{}{record}})
	if err != nil {
		return nil, err
	}

	resp, err := db.exec.Do(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "inserting into %s", table)
	}
	if !resp.OK() {
		return nil, core.NewHTTPError("insert into "+table, resp.StatusCode, resp.Body)
	}

	var res insertResult
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, errors.Wrapf(core.ErrContractViolation, "insert into %s: undecodable body", table)
	}
	if len(res.Inserted) == 0 {
		return nil, errors.Wrapf(core.ErrContractViolation, "insert into %s: nothing inserted", table)
	}
	return res.Inserted[0], nil
}

// Update applies updates to the row whose _id is id.
func (db *Database) Update(ctx context.Context, table, id string, updates interface{}) error {
	req, err := jsonRequest(http.MethodPut, db.baseURL+"/update", updateBody{
		TableName: table,
		IDColumn:  IDColumn,
		IDValue:   id,
		Updates:   updates,
	})
	if err != nil {
		return err
	}

	resp, err := db.exec.Do(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "updating %s", table)
	}
	if !resp.OK() {
		return core.NewHTTPError("update "+table, resp.StatusCode, resp.Body)
	}
	return nil
}

// Delete removes the row whose _id is id.
func (db *Database) Delete(ctx context.Context, table, id string) error {
	req, err := jsonRequest(http.MethodDelete, db.baseURL+"/delete", deleteBody{TableName: table, IDColumn: IDColumn, IDValue: id})
	if err != nil {
		return err
	}

	resp, err := db.exec.Do(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	if !resp.OK() {
		return core.NewHTTPError("delete from "+table, resp.StatusCode, resp.Body)
	}
	return nil
}
