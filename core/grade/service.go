package grade

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrNotFound = errors.New("grade not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// GetByActivityAndStudent returns ErrNotFound when the student has no grade yet.
		GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (Grade, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Grade, error)
		QueryByActivity(ctx context.Context, activityID string) ([]Grade, error)
		Create(ctx context.Context, rec Record) (Grade, error)
		Update(ctx context.Context, id string, rec Record) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByActivityAndStudent(ctx context.Context, activityID, studentID string) (Grade, error) {
	return svc.repo.GetByActivityAndStudent(ctx, core.CleanID(activityID), core.CleanID(studentID))
}

func (svc *Service) GetByCourse(ctx context.Context, courseID string) ([]Grade, error) {
	return svc.repo.QueryByCourse(ctx, core.CleanID(courseID))
}

func (svc *Service) GetByActivity(ctx context.Context, activityID string) ([]Grade, error) {
	return svc.repo.QueryByActivity(ctx, core.CleanID(activityID))
}

// Save writes the one grade of (activity, student): the given GradeID is updated,
// else an existing grade for the pair is updated, else a new one is created.
func (svc *Service) Save(ctx context.Context, in SaveGradeInput) (Grade, error) {
	rec := Record{
		AssessmentID: core.CleanID(in.AssessmentID),
		ActivityID:   core.CleanID(in.ActivityID),
		CourseID:     core.CleanID(in.CourseID),
		GroupID:      core.CleanID(in.GroupID),
		StudentID:    core.CleanID(in.StudentID),
		Criterias:    in.Criterias,
		FinalGrade:   in.FinalGrade,
		Feedback:     core.CleanString(in.Feedback),
		GradedBy:     core.CleanID(in.GradedBy),
		GradedAt:     in.GradedAt,
	}
	if rec.AssessmentID == "" {
		rec.AssessmentID = rec.ActivityID
	}
	if rec.Criterias == nil {
		rec.Criterias = map[string]float64{}
	}
	if rec.GradedAt == "" {
		rec.GradedAt = NowFunc().UTC().Format(time.RFC3339)
	}
	if err := core.ValidateStruct(rec); err != nil {
		return Grade{}, err
	}

	id := core.CleanID(in.GradeID)
	if id == "" {
		existing, err := svc.repo.GetByActivityAndStudent(ctx, rec.ActivityID, rec.StudentID)
		switch {
		case errors.Is(err, ErrNotFound):
			return svc.repo.Create(ctx, rec)
		case err != nil:
			return Grade{}, err
		}
		id = existing.ID
	}

	if err := svc.repo.Update(ctx, id, rec); err != nil {
		return Grade{}, err
	}
	return fromRecord(id, rec), nil
}

func fromRecord(id string, rec Record) Grade {
	return Grade{
		ID:           id,
		AssessmentID: rec.AssessmentID,
		ActivityID:   rec.ActivityID,
		CourseID:     rec.CourseID,
		GroupID:      rec.GroupID,
		StudentID:    rec.StudentID,
		Criterias:    rec.Criterias,
		FinalGrade:   rec.FinalGrade,
		Feedback:     rec.Feedback,
		GradedBy:     rec.GradedBy,
		GradedAt:     rec.GradedAt,
	}
}

// FinalGrade is the mean of the criteria scores rounded to 2 decimals (0 without criteria).
func FinalGrade(criterias map[string]float64) float64 {
	if len(criterias) == 0 {
		return 0
	}
	var sum float64
	for _, score := range criterias {
		sum += score
	}
	return Round2(sum / float64(len(criterias)))
}

// CourseAverage is the mean final grade over grades, rounded to 2 decimals.
func CourseAverage(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.FinalGrade
	}
	return Round2(sum / float64(len(grades)))
}

// ActivityAverages maps each activity id to the mean final grade of its grades.
func ActivityAverages(grades []Grade) map[string]float64 {
	return averagesBy(grades, func(g Grade) string { return g.ActivityID })
}

// GroupAverages maps each group id to the mean final grade across its activities.
// Grades without a group are left out.
func GroupAverages(grades []Grade) map[string]float64 {
	return averagesBy(grades, func(g Grade) string { return g.GroupID })
}

// StudentAverages maps each student id to the mean final grade across activities.
func StudentAverages(grades []Grade) map[string]float64 {
	return averagesBy(grades, func(g Grade) string { return g.StudentID })
}

func averagesBy(grades []Grade, key func(Grade) string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, g := range grades {
		k := core.CleanID(key(g))
		if k == "" {
			continue
		}
		sums[k] += g.FinalGrade
		counts[k]++
	}
	avgs := make(map[string]float64, len(sums))
	for k, sum := range sums {
		avgs[k] = Round2(sum / float64(counts[k]))
	}
	return avgs
}

func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
