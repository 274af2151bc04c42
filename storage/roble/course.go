package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/course"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type courseRepository struct {
	db  Store
	dec decoder
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db Store, logger core.Logger) course.Repository {
	return &courseRepository{db: db, dec: decoder{table: CoursesTable, logger: logger}}
}

func (repo *courseRepository) decode(fields map[string]json.RawMessage) course.Course {
	return course.Course{
		ID:          repo.dec.id("_id", fields["_id"]),
		Name:        repo.dec.str("name", fields["name"]),
		Description: repo.dec.str("description", fields["description"]),
		TeacherID:   repo.dec.id("teacherId", fields["teacherId"]),
		StudentIDs:  repo.dec.ids("studentIds", fields["studentIds"]),
		CategoryIDs: repo.dec.ids("categoryIds", fields["categoryIds"]),
	}
}

func (repo *courseRepository) QueryAll(ctx context.Context) ([]course.Course, error) {
	raws, err := repo.db.Read(ctx, CoursesTable)
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	courses := make([]course.Course, 0, len(rows))
	for _, fields := range rows {
		courses = append(courses, repo.decode(fields))
	}
	return courses, nil
}

func (repo *courseRepository) GetByID(ctx context.Context, id string) (course.Course, error) {
	raws, err := repo.db.Read(ctx, CoursesTable, roblesvc.Eq("_id", id))
	if err != nil {
		return course.Course{}, err
	}
	rows := repo.dec.rows(raws)
	if len(rows) == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.decode(rows[0]), nil
}

func (repo *courseRepository) Create(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	record := map[string]interface{}{
		"name":        nc.Name,
		"description": nc.Description,
		"teacherId":   nc.TeacherID,
		"studentIds":  wrapIDs(nc.StudentIDs),
	}
	raw, err := repo.db.Insert(ctx, CoursesTable, record)
	if err != nil {
		return course.Course{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return course.Course{}, err
	}
	return repo.decode(fields), nil
}

func (repo *courseRepository) SetStudents(ctx context.Context, id string, studentIDs []string) error {
	return repo.db.Update(ctx, CoursesTable, id, map[string]interface{}{"studentIds": wrapIDs(studentIDs)})
}
