package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/category"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type categoryRepository struct {
	db  Store
	dec decoder
}

var _ category.Repository = (*categoryRepository)(nil)

func NewCategoryRepository(db Store, logger core.Logger) category.Repository {
	return &categoryRepository{db: db, dec: decoder{table: CategoriesTable, logger: logger}}
}

func (repo *categoryRepository) decode(fields map[string]json.RawMessage) category.Category {
	return category.Category{
		ID:             repo.dec.id("_id", fields["_id"]),
		CourseID:       repo.dec.id("courseId", fields["courseId"]),
		Name:           repo.dec.str("name", fields["name"]),
		GroupingMethod: repo.dec.str("groupingMethod", fields["groupingMethod"]),
		GroupSize:      int(repo.dec.number("groupSize", fields["groupSize"])),
	}
}

func (repo *categoryRepository) QueryByCourse(ctx context.Context, courseID string) ([]category.Category, error) {
	raws, err := repo.db.Read(ctx, CategoriesTable, roblesvc.Eq("courseId", courseID))
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	cats := make([]category.Category, 0, len(rows))
	for _, fields := range rows {
		cats = append(cats, repo.decode(fields))
	}
	return cats, nil
}

func (repo *categoryRepository) Create(ctx context.Context, nc category.NewCategory) (category.Category, error) {
	raw, err := repo.db.Insert(ctx, CategoriesTable, nc)
	if err != nil {
		return category.Category{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return category.Category{}, err
	}
	return repo.decode(fields), nil
}

func (repo *categoryRepository) Update(ctx context.Context, uc category.UpdateCategory) error {
	updates := make(map[string]interface{}, 3)
	if uc.Name != nil {
		updates["name"] = *uc.Name
	}
	if uc.GroupingMethod != nil {
		updates["groupingMethod"] = *uc.GroupingMethod
	}
	if uc.GroupSize != nil {
		updates["groupSize"] = *uc.GroupSize
	}
	return repo.db.Update(ctx, CategoriesTable, uc.ID, updates)
}

func (repo *categoryRepository) Delete(ctx context.Context, id string) error {
	return repo.db.Delete(ctx, CategoriesTable, id)
}
