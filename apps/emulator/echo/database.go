package echoemu

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	inmemdb "github.com/trezcool/aula/storage/inmem"
)

type (
	insertRequest struct {
		TableName string        `json:"tableName"`
		Records   []inmemdb.Row `json:"records"`
	}

	updateRequest struct {
		TableName string      `json:"tableName"`
		IDColumn  string      `json:"idColumn"`
		IDValue   string      `json:"idValue"`
		Updates   inmemdb.Row `json:"updates"`
	}

	deleteRequest struct {
		TableName string `json:"tableName"`
		IDColumn  string `json:"idColumn"`
		IDValue   string `json:"idValue"`
	}
)

func (s *server) registerDatabaseAPI(g *echo.Group) {
	g.GET("/read", s.read)
	g.POST("/insert", s.insert)
	g.PUT("/update", s.update)
	g.DELETE("/delete", s.remove)
}

// tableAllowed hides the emulator's own tables from clients.
func tableAllowed(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

// Handlers

func (s *server) read(ctx echo.Context) error {
	params := ctx.QueryParams()
	table := params.Get("tableName")
	if !tableAllowed(table) {
		return errMissingTable
	}
	filters := make(map[string]string, len(params))
	for key := range params {
		if key != "tableName" {
			filters[key] = params.Get(key)
		}
	}
	return ctx.JSON(http.StatusOK, s.db.Select(table, filters))
}

func (s *server) insert(ctx echo.Context) error {
	data := new(insertRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !tableAllowed(data.TableName) {
		return errMissingTable
	}
	if len(data.Records) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "records must not be empty")
	}
	inserted, err := s.db.Insert(data.TableName, data.Records)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"inserted": inserted, "skipped": []interface{}{}})
}

func (s *server) update(ctx echo.Context) error {
	data := new(updateRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !tableAllowed(data.TableName) {
		return errMissingTable
	}
	row, err := s.db.Update(data.TableName, data.IDColumn, data.IDValue, data.Updates)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (s *server) remove(ctx echo.Context) error {
	data := new(deleteRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if !tableAllowed(data.TableName) {
		return errMissingTable
	}
	if err := s.db.Delete(data.TableName, data.IDColumn, data.IDValue); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deleted": data.IDValue})
}
