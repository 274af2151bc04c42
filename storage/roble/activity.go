package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/activity"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type activityRepository struct {
	db  Store
	dec decoder
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db Store, logger core.Logger) activity.Repository {
	return &activityRepository{db: db, dec: decoder{table: ActivitiesTable, logger: logger}}
}

func (repo *activityRepository) decode(fields map[string]json.RawMessage) activity.Activity {
	return activity.Activity{
		ID:          repo.dec.id("_id", fields["_id"]),
		Title:       repo.dec.str("title", fields["title"]),
		Description: repo.dec.str("description", fields["description"]),
		Date:        repo.dec.str("date", fields["date"]),
		CourseID:    repo.dec.id("courseId", fields["courseId"]),
		CategoryID:  repo.dec.id("categoryId", fields["categoryId"]),
		GroupID:     repo.dec.id("groupId", fields["groupId"]),
	}
}

func (repo *activityRepository) query(ctx context.Context, filter roblesvc.Filter) ([]activity.Activity, error) {
	raws, err := repo.db.Read(ctx, ActivitiesTable, filter)
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	acts := make([]activity.Activity, 0, len(rows))
	for _, fields := range rows {
		acts = append(acts, repo.decode(fields))
	}
	return acts, nil
}

func (repo *activityRepository) QueryByCourse(ctx context.Context, courseID string) ([]activity.Activity, error) {
	return repo.query(ctx, roblesvc.Eq("courseId", courseID))
}

func (repo *activityRepository) QueryByCategory(ctx context.Context, categoryID string) ([]activity.Activity, error) {
	return repo.query(ctx, roblesvc.Eq("categoryId", categoryID))
}

func (repo *activityRepository) Create(ctx context.Context, na activity.NewActivity) (activity.Activity, error) {
	raw, err := repo.db.Insert(ctx, ActivitiesTable, na)
	if err != nil {
		return activity.Activity{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return activity.Activity{}, err
	}
	return repo.decode(fields), nil
}

func (repo *activityRepository) Update(ctx context.Context, ua activity.UpdateActivity) error {
	updates := make(map[string]interface{}, 5)
	setString(updates, "title", ua.Title)
	setString(updates, "description", ua.Description)
	setString(updates, "date", ua.Date)
	setString(updates, "categoryId", ua.CategoryID)
	setString(updates, "groupId", ua.GroupID)
	return repo.db.Update(ctx, ActivitiesTable, ua.ID, updates)
}

func (repo *activityRepository) Delete(ctx context.Context, id string) error {
	return repo.db.Delete(ctx, ActivitiesTable, id)
}

func setString(updates map[string]interface{}, field string, val *string) {
	if val != nil {
		updates[field] = *val
	}
}
