package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/submission"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type submissionRepository struct {
	db  Store
	dec decoder
}

var _ submission.Repository = (*submissionRepository)(nil)

func NewSubmissionRepository(db Store, logger core.Logger) submission.Repository {
	return &submissionRepository{db: db, dec: decoder{table: SubmissionsTable, logger: logger}}
}

func (repo *submissionRepository) decode(fields map[string]json.RawMessage) submission.Submission {
	return submission.Submission{
		ID:             repo.dec.id("_id", fields["_id"]),
		StudentID:      repo.dec.id("studentId", fields["studentId"]),
		ActivityID:     repo.dec.id("activityId", fields["activityId"]),
		GroupID:        repo.dec.id("groupId", fields["groupId"]),
		Content:        repo.dec.str("content", fields["content"]),
		SubmissionDate: repo.dec.str("submissionDate", fields["submissionDate"]),
		Grade:          repo.dec.str("grade", fields["grade"]),
		Feedback:       repo.dec.str("feedback", fields["feedback"]),
		CourseID:       repo.dec.id("courseId", fields["courseId"]),
	}
}

func (repo *submissionRepository) query(ctx context.Context, filters ...roblesvc.Filter) ([]submission.Submission, error) {
	raws, err := repo.db.Read(ctx, SubmissionsTable, filters...)
	if err != nil {
		return nil, err
	}
	rows := repo.dec.rows(raws)
	subs := make([]submission.Submission, 0, len(rows))
	for _, fields := range rows {
		subs = append(subs, repo.decode(fields))
	}
	return subs, nil
}

func (repo *submissionRepository) GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (submission.Submission, error) {
	subs, err := repo.query(ctx, roblesvc.Eq("activityId", activityID), roblesvc.Eq("studentId", studentID))
	if err != nil {
		return submission.Submission{}, err
	}
	if len(subs) == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return subs[0], nil
}

func (repo *submissionRepository) QueryByActivity(ctx context.Context, activityID string) ([]submission.Submission, error) {
	return repo.query(ctx, roblesvc.Eq("activityId", activityID))
}

func (repo *submissionRepository) Create(ctx context.Context, ns submission.NewSubmission) (submission.Submission, error) {
	raw, err := repo.db.Insert(ctx, SubmissionsTable, ns)
	if err != nil {
		return submission.Submission{}, err
	}
	fields, err := repo.dec.inserted(raw)
	if err != nil {
		return submission.Submission{}, err
	}
	return repo.decode(fields), nil
}

func (repo *submissionRepository) Update(ctx context.Context, us submission.UpdateSubmission) error {
	updates := make(map[string]interface{}, 6)
	setString(updates, "groupId", us.GroupID)
	setString(updates, "content", us.Content)
	setString(updates, "submissionDate", us.SubmissionDate)
	setString(updates, "grade", us.Grade)
	setString(updates, "feedback", us.Feedback)
	setString(updates, "courseId", us.CourseID)
	return repo.db.Update(ctx, SubmissionsTable, us.ID, updates)
}
