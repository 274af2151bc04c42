package group

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrNotFound = errors.New("group not found")
)

type (
	Repository interface {
		QueryByCategory(ctx context.Context, categoryID string) ([]Group, error)
		// GetByID returns ErrNotFound when no row matches.
		GetByID(ctx context.Context, id string) (Group, error)
		Create(ctx context.Context, ng NewGroup) (Group, error)
		Update(ctx context.Context, ug UpdateGroup) error
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) GetByCategory(ctx context.Context, categoryID string) ([]Group, error) {
	return svc.repo.QueryByCategory(ctx, core.CleanID(categoryID))
}

// GetByCategories loads the groups of every category concurrently.
// A category whose load fails maps to an empty list; the batch itself never fails.
func (svc *Service) GetByCategories(ctx context.Context, categoryIDs []string) map[string][]Group {
	var (
		mu  sync.Mutex
		out = make(map[string][]Group, len(categoryIDs))
		eg  errgroup.Group
	)
	for _, id := range categoryIDs {
		id := core.CleanID(id)
		eg.Go(func() error {
			groups, err := svc.repo.QueryByCategory(ctx, id)
			if err != nil {
				svc.logger.Warn("loading groups of category failed", err, map[string]interface{}{"category": id})
				groups = []Group{}
			}
			mu.Lock()
			out[id] = groups
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func (svc *Service) Get(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetByID(ctx, core.CleanID(id))
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	ng.CategoryID = core.CleanID(ng.CategoryID)
	ng.CourseID = core.CleanID(ng.CourseID)
	ng.Name = core.CleanString(ng.Name)
	if ng.StudentIDs == nil {
		ng.StudentIDs = []string{}
	}
	if err := core.ValidateStruct(ng); err != nil {
		return Group{}, err
	}
	return svc.repo.Create(ctx, ng)
}

func (svc *Service) Update(ctx context.Context, ug UpdateGroup) error {
	ug.ID = core.CleanID(ug.ID)
	if err := core.ValidateStruct(ug); err != nil {
		return err
	}
	return svc.repo.Update(ctx, ug)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, core.CleanID(id))
}

// AddStudent puts studentID in the group; adding a member twice is a no-op.
func (svc *Service) AddStudent(ctx context.Context, groupID, studentID string) error {
	grp, err := svc.repo.GetByID(ctx, core.CleanID(groupID))
	if err != nil {
		return err
	}
	studentID = core.CleanID(studentID)
	if grp.HasStudent(studentID) {
		return nil
	}
	students := append(append(make([]string, 0, len(grp.StudentIDs)+1), grp.StudentIDs...), studentID)
	return svc.repo.Update(ctx, UpdateGroup{ID: grp.ID, StudentIDs: students})
}

func (svc *Service) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	grp, err := svc.repo.GetByID(ctx, core.CleanID(groupID))
	if err != nil {
		return err
	}
	studentID = core.CleanID(studentID)
	students := make([]string, 0, len(grp.StudentIDs))
	for _, id := range grp.StudentIDs {
		if id != studentID {
			students = append(students, id)
		}
	}
	return svc.repo.Update(ctx, UpdateGroup{ID: grp.ID, StudentIDs: students})
}
