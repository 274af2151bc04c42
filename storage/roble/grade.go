package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/grade"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type gradeRepository struct {
	db  Store
	dec decoder
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db Store, logger core.Logger) grade.Repository {
	return &gradeRepository{db: db, dec: decoder{table: GradesTable, logger: logger}}
}

func (repo *gradeRepository) decode(fields map[string]json.RawMessage) grade.Grade {
	return grade.Grade{
		ID:           repo.dec.id("_id", fields["_id"]),
		AssessmentID: repo.dec.id("assessmentId", fields["assessmentId"]),
		ActivityID:   repo.dec.id("activityId", fields["activityId"]),
		CourseID:     repo.dec.id("courseId", fields["courseId"]),
		GroupID:      repo.dec.id("groupId", fields["groupId"]),
		StudentID:    repo.dec.id("studentId", fields["studentId"]),
		Criterias:    repo.dec.scores("criterias", fields["criterias"]),
		FinalGrade:   repo.dec.number("finalGrade", fields["finalGrade"]),
		Feedback:     repo.dec.str("feedback", fields["feedback"]),
		GradedBy:     repo.dec.id("gradedBy", fields["gradedBy"]),
		GradedAt:     repo.dec.str("gradedAt", fields["gradedAt"]),
	}
}

func (repo *gradeRepository) query(ctx context.Context, filters ...roblesvc.Filter) ([]grade.Grade, error) {
	raws, err := repo.db.Read(ctx, GradesTable, filters...)
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	grades := make([]grade.Grade, 0, len(rows))
	for _, fields := range rows {
		grades = append(grades, repo.decode(fields))
	}
	return grades, nil
}

func (repo *gradeRepository) GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (grade.Grade, error) {
	grades, err := repo.query(ctx, roblesvc.Eq("activityId", activityID), roblesvc.Eq("studentId", studentID))
	if err != nil {
		return grade.Grade{}, err
	}
	if len(grades) == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return grades[0], nil
}

func (repo *gradeRepository) QueryByCourse(ctx context.Context, courseID string) ([]grade.Grade, error) {
	return repo.query(ctx, roblesvc.Eq("courseId", courseID))
}

func (repo *gradeRepository) QueryByActivity(ctx context.Context, activityID string) ([]grade.Grade, error) {
	return repo.query(ctx, roblesvc.Eq("activityId", activityID))
}

func (repo *gradeRepository) Create(ctx context.Context, rec grade.Record) (grade.Grade, error) {
	raw, err := repo.db.Insert(ctx, GradesTable, rec)
	if err != nil {
		return grade.Grade{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return grade.Grade{}, err
	}
	return repo.decode(fields), nil
}

func (repo *gradeRepository) Update(ctx context.Context, id string, rec grade.Record) error {
	return repo.db.Update(ctx, GradesTable, id, rec)
}
