package submission

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrNotFound = errors.New("submission not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// GetByActivityAndStudent returns ErrNotFound when the student has not submitted.
		GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (Submission, error)
		QueryByActivity(ctx context.Context, activityID string) ([]Submission, error)
		Create(ctx context.Context, ns NewSubmission) (Submission, error)
		Update(ctx context.Context, us UpdateSubmission) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (Submission, error) {
	return svc.repo.GetByActivityAndStudent(ctx, core.CleanID(activityID), core.CleanID(studentID))
}

func (svc *Service) GetByActivity(ctx context.Context, activityID string) ([]Submission, error) {
	return svc.repo.QueryByActivity(ctx, core.CleanID(activityID))
}

func (svc *Service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	ns = clean(ns)
	if err := core.ValidateStruct(ns); err != nil {
		return Submission{}, err
	}
	return svc.repo.Create(ctx, ns)
}

func (svc *Service) Update(ctx context.Context, us UpdateSubmission) error {
	us.ID = core.CleanID(us.ID)
	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	return svc.repo.Update(ctx, us)
}

// Submit creates the student's submission for the activity or overwrites the content of the existing one.
func (svc *Service) Submit(ctx context.Context, ns NewSubmission) (Submission, error) {
	ns = clean(ns)
	if ns.SubmissionDate == "" {
		ns.SubmissionDate = NowFunc().UTC().Format(time.RFC3339)
	}
	if err := core.ValidateStruct(ns); err != nil {
		return Submission{}, err
	}

	existing, err := svc.repo.GetByActivityAndStudent(ctx, ns.ActivityID, ns.StudentID)
	switch {
	case errors.Is(err, ErrNotFound):
		return svc.repo.Create(ctx, ns)
	case err != nil:
		return Submission{}, err
	}

	us := UpdateSubmission{ID: existing.ID, Content: &ns.Content, SubmissionDate: &ns.SubmissionDate}
	if ns.GroupID != "" {
		us.GroupID = &ns.GroupID
	}
	if err := svc.repo.Update(ctx, us); err != nil {
		return Submission{}, err
	}
	existing.Content = ns.Content
	existing.SubmissionDate = ns.SubmissionDate
	if ns.GroupID != "" {
		existing.GroupID = ns.GroupID
	}
	return existing, nil
}

func clean(ns NewSubmission) NewSubmission {
	ns.StudentID = core.CleanID(ns.StudentID)
	ns.ActivityID = core.CleanID(ns.ActivityID)
	ns.GroupID = core.CleanID(ns.GroupID)
	ns.CourseID = core.CleanID(ns.CourseID)
	return ns
}
