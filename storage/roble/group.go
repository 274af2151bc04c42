package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/group"
	roblesvc "github.com/trezcool/aula/services/roble"
)

// groupCategoryField is the column holding a group's category id (a single id despite the plural).
const groupCategoryField = "categoryIds"

type groupRepository struct {
	db  Store
	dec decoder
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db Store, logger core.Logger) group.Repository {
	return &groupRepository{db: db, dec: decoder{table: GroupsTable, logger: logger}}
}

func (repo *groupRepository) decode(fields map[string]json.RawMessage) group.Group {
	categoryID := repo.dec.id(groupCategoryField, fields[groupCategoryField])
	if categoryID == "" {
		categoryID = repo.dec.id("categoryId", fields["categoryId"])
	}
	return group.Group{
		ID:         repo.dec.id("_id", fields["_id"]),
		CategoryID: categoryID,
		Name:       repo.dec.str("name", fields["name"]),
		StudentIDs: repo.dec.ids("studentIds", fields["studentIds"]),
		CourseID:   repo.dec.id("courseId", fields["courseId"]),
	}
}

func (repo *groupRepository) query(ctx context.Context, filter roblesvc.Filter) ([]group.Group, error) {
	raws, err := repo.db.Read(ctx, GroupsTable, filter)
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	groups := make([]group.Group, 0, len(rows))
	for _, fields := range rows {
		groups = append(groups, repo.decode(fields))
	}
	return groups, nil
}

func (repo *groupRepository) QueryByCategory(ctx context.Context, categoryID string) ([]group.Group, error) {
	return repo.query(ctx, roblesvc.Eq(groupCategoryField, categoryID))
}

func (repo *groupRepository) GetByID(ctx context.Context, id string) (group.Group, error) {
	groups, err := repo.query(ctx, roblesvc.Eq("_id", id))
	if err != nil {
		return group.Group{}, err
	}
	if len(groups) == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return groups[0], nil
}

func (repo *groupRepository) Create(ctx context.Context, ng group.NewGroup) (group.Group, error) {
	record := map[string]interface{}{
		groupCategoryField: ng.CategoryID,
		"name":             ng.Name,
		"studentIds":       wrapIDs(ng.StudentIDs),
	}
	if ng.CourseID != "" {
		record["courseId"] = ng.CourseID
	}
	raw, err := repo.db.Insert(ctx, GroupsTable, record)
	if err != nil {
		return group.Group{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return group.Group{}, err
	}
	return repo.decode(fields), nil
}

func (repo *groupRepository) Update(ctx context.Context, ug group.UpdateGroup) error {
	updates := make(map[string]interface{}, 3)
	if ug.Name != nil {
		updates["name"] = *ug.Name
	}
	if ug.StudentIDs != nil {
		updates["studentIds"] = wrapIDs(ug.StudentIDs)
	}
	if ug.CourseID != nil {
		updates["courseId"] = *ug.CourseID
	}
	return repo.db.Update(ctx, GroupsTable, ug.ID, updates)
}

func (repo *groupRepository) Delete(ctx context.Context, id string) error {
	return repo.db.Delete(ctx, GroupsTable, id)
}
