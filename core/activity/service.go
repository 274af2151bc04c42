package activity

import (
	"context"

	"github.com/trezcool/aula/core"
)

type (
	Repository interface {
		QueryByCourse(ctx context.Context, courseID string) ([]Activity, error)
		QueryByCategory(ctx context.Context, categoryID string) ([]Activity, error)
		Create(ctx context.Context, na NewActivity) (Activity, error)
		Update(ctx context.Context, ua UpdateActivity) error
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByCourse(ctx context.Context, courseID string) ([]Activity, error) {
	return svc.repo.QueryByCourse(ctx, core.CleanID(courseID))
}

func (svc *Service) GetByCategory(ctx context.Context, categoryID string) ([]Activity, error) {
	return svc.repo.QueryByCategory(ctx, core.CleanID(categoryID))
}

func (svc *Service) Create(ctx context.Context, na NewActivity) (Activity, error) {
	na.Title = core.CleanString(na.Title)
	na.CourseID = core.CleanID(na.CourseID)
	na.CategoryID = core.CleanID(na.CategoryID)
	na.GroupID = core.CleanID(na.GroupID)
	if err := core.ValidateStruct(na); err != nil {
		return Activity{}, err
	}
	return svc.repo.Create(ctx, na)
}

func (svc *Service) Update(ctx context.Context, ua UpdateActivity) error {
	ua.ID = core.CleanID(ua.ID)
	if err := core.ValidateStruct(ua); err != nil {
		return err
	}
	return svc.repo.Update(ctx, ua)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, core.CleanID(id))
}
