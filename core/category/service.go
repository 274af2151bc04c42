package category

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/group"
)

type (
	Repository interface {
		QueryByCourse(ctx context.Context, courseID string) ([]Category, error)
		Create(ctx context.Context, nc NewCategory) (Category, error)
		Update(ctx context.Context, uc UpdateCategory) error
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		groups *group.Service
		logger core.Logger

		rndMu sync.Mutex
		rnd   *rand.Rand
	}
)

// NewService seeds the roster shuffle with seed, or with the clock when seed is 0.
func NewService(repo Repository, groups *group.Service, logger core.Logger, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		repo:   repo,
		groups: groups,
		logger: logger,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

func (svc *Service) GetByCourse(ctx context.Context, courseID string) ([]Category, error) {
	return svc.repo.QueryByCourse(ctx, core.CleanID(courseID))
}

func (svc *Service) Create(ctx context.Context, nc NewCategory) (Category, error) {
	nc.CourseID = core.CleanID(nc.CourseID)
	nc.Name = core.CleanString(nc.Name)
	if err := core.ValidateStruct(nc); err != nil {
		return Category{}, err
	}
	return svc.repo.Create(ctx, nc)
}

// CreateWithGroups creates the category and, for the random method, deals roster
// into ceil(len(roster)/groupSize) groups created concurrently.
// There is no rollback: on a failed group the category and the other groups stay.
func (svc *Service) CreateWithGroups(ctx context.Context, nc NewCategory, roster []string) (Category, []group.Group, error) {
	cat, err := svc.Create(ctx, nc)
	if err != nil {
		return Category{}, nil, err
	}
	if nc.GroupingMethod != GroupingRandom {
		return cat, []group.Group{}, nil
	}

	// groups follow the validated input, not the insert echo
	name, courseID := core.CleanString(nc.Name), core.CleanID(nc.CourseID)
	chunks := Deal(svc.shuffle(roster), nc.GroupSize)
	created := make([]group.Group, len(chunks))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, members := range chunks {
		i, members := i, members
		eg.Go(func() error {
			grp, err := svc.groups.Create(egCtx, group.NewGroup{
				CategoryID: cat.ID,
				Name:       GroupName(name, i+1),
				StudentIDs: members,
				CourseID:   courseID,
			})
			if err != nil {
				return err
			}
			created[i] = grp
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		svc.logger.Error("random grouping left a partial set of groups", err, map[string]interface{}{"category": cat.ID})
		return cat, nil, err
	}
	return cat, created, nil
}

func (svc *Service) Update(ctx context.Context, uc UpdateCategory) error {
	uc.ID = core.CleanID(uc.ID)
	if err := core.ValidateStruct(uc); err != nil {
		return err
	}
	return svc.repo.Update(ctx, uc)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, core.CleanID(id))
}

// shuffle cleans and de-duplicates roster, then shuffles it.
func (svc *Service) shuffle(roster []string) []string {
	out := make([]string, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		id = core.CleanID(id)
		if _, dup := seen[id]; id == "" || dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	svc.rndMu.Lock()
	svc.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	svc.rndMu.Unlock()
	return out
}

// Deal slices students into contiguous chunks of at most size members (size < 1 counts as 1).
func Deal(students []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	chunks := make([][]string, 0, (len(students)+size-1)/size)
	for start := 0; start < len(students); start += size {
		end := start + size
		if end > len(students) {
			end = len(students)
		}
		chunks = append(chunks, students[start:end:end])
	}
	return chunks
}

// GroupName names the i-th (1-based) generated group of a category.
func GroupName(categoryName string, i int) string {
	return fmt.Sprintf("[%s] Group %d", categoryName, i)
}
