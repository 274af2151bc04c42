package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		QueryAll(ctx context.Context) ([]Course, error)
		// GetByID returns ErrNotFound when no row matches.
		GetByID(ctx context.Context, id string) (Course, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		SetStudents(ctx context.Context, id string, studentIDs []string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Available returns the courses userID neither teaches nor attends.
func Available(courses []Course, userID string) []Course {
	return filter(courses, func(c Course) bool {
		return c.TeacherID != userID && !c.HasStudent(userID)
	})
}

// Created returns the courses taught by teacherID.
func Created(courses []Course, teacherID string) []Course {
	return filter(courses, func(c Course) bool { return c.TeacherID == teacherID })
}

// Enrolled returns the courses attended by studentID.
func Enrolled(courses []Course, studentID string) []Course {
	return filter(courses, func(c Course) bool { return c.HasStudent(studentID) })
}

func filter(courses []Course, keep func(Course) bool) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (svc *Service) GetAvailable(ctx context.Context, userID string) ([]Course, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	return Available(all, userID), nil
}

func (svc *Service) GetCreated(ctx context.Context, teacherID string) ([]Course, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	return Created(all, teacherID), nil
}

func (svc *Service) GetEnrolled(ctx context.Context, studentID string) ([]Course, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	return Enrolled(all, studentID), nil
}

// Partition answers all three listings from a single fetch.
func (svc *Service) Partition(ctx context.Context, userID string) (Partition, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return Partition{}, err
	}
	return Partition{
		Available: Available(all, userID),
		Created:   Created(all, userID),
		Enrolled:  Enrolled(all, userID),
	}, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetByID(ctx, core.CleanID(id))
}

// Join enrolls studentID; joining twice leaves the roster unchanged.
func (svc *Service) Join(ctx context.Context, courseID, studentID string) error {
	courseID, studentID = core.CleanID(courseID), core.CleanID(studentID)
	crs, err := svc.repo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if crs.HasStudent(studentID) {
		svc.logger.Debug("already enrolled", map[string]interface{}{"course": courseID, "student": studentID})
		return nil
	}
	students := append(append(make([]string, 0, len(crs.StudentIDs)+1), crs.StudentIDs...), studentID)
	return svc.repo.SetStudents(ctx, courseID, students)
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.TeacherID = core.CleanID(nc.TeacherID)
	if nc.StudentIDs == nil {
		nc.StudentIDs = []string{}
	}
	if err := core.ValidateStruct(nc); err != nil {
		return Course{}, err
	}
	return svc.repo.Create(ctx, nc)
}
