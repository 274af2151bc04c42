package group

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/pkg/errors"

	logsvc "github.com/trezcool/aula/services/logger"
)

type repoMock struct {
	mutex   sync.Mutex
	groups  map[string]Group
	failing map[string]bool // category ids
	updates []UpdateGroup
}

func (r *repoMock) QueryByCategory(_ context.Context, categoryID string) ([]Group, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.failing[categoryID] {
		return nil, errors.New("backend unavailable")
	}
	out := []Group{}
	for _, g := range r.groups {
		if g.CategoryID == categoryID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *repoMock) GetByID(_ context.Context, id string) (Group, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return Group{}, ErrNotFound
	}
	return g, nil
}

func (r *repoMock) Create(_ context.Context, ng NewGroup) (Group, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	g := Group{ID: ng.Name, CategoryID: ng.CategoryID, Name: ng.Name, StudentIDs: ng.StudentIDs, CourseID: ng.CourseID}
	r.groups[g.ID] = g
	return g, nil
}

func (r *repoMock) Update(_ context.Context, ug UpdateGroup) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.updates = append(r.updates, ug)
	g := r.groups[ug.ID]
	if ug.StudentIDs != nil {
		g.StudentIDs = ug.StudentIDs
	}
	if ug.Name != nil {
		g.Name = *ug.Name
	}
	r.groups[ug.ID] = g
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.groups, id)
	return nil
}

func TestService_GetByCategories(t *testing.T) {
	repo := &repoMock{
		groups: map[string]Group{
			"g1": {ID: "g1", CategoryID: "cat1"},
			"g2": {ID: "g2", CategoryID: "cat1"},
			"g3": {ID: "g3", CategoryID: "cat3"},
		},
		failing: map[string]bool{"cat2": true},
	}
	svc := NewService(repo, logsvc.NewDiscardLogger())

	got := svc.GetByCategories(context.Background(), []string{"cat1", "cat2\n", "cat3", "cat4"})

	want := map[string]int{"cat1": 2, "cat2": 0, "cat3": 1, "cat4": 0}
	if len(got) != len(want) {
		t.Fatalf("GetByCategories() returned %d categories, want %d", len(got), len(want))
	}
	for cat, n := range want {
		groups, ok := got[cat]
		if !ok {
			t.Errorf("GetByCategories() missing %s", cat)
			continue
		}
		if groups == nil || len(groups) != n {
			t.Errorf("GetByCategories()[%s] = %v, want %d groups", cat, groups, n)
		}
	}
}

func TestService_Membership(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{groups: map[string]Group{"g1": {ID: "g1", CategoryID: "cat1", StudentIDs: []string{"ana"}}}}
	svc := NewService(repo, logsvc.NewDiscardLogger())

	tests := []struct {
		name        string
		op          func() error
		want        []string
		wantUpdates int
	}{
		{name: "add", op: func() error { return svc.AddStudent(ctx, "g1", "bo") }, want: []string{"ana", "bo"}, wantUpdates: 1},
		{name: "add twice is a no-op", op: func() error { return svc.AddStudent(ctx, "g1\n", "bo") }, want: []string{"ana", "bo"}, wantUpdates: 1},
		{name: "remove", op: func() error { return svc.RemoveStudent(ctx, "g1", "ana") }, want: []string{"bo"}, wantUpdates: 2},
		{name: "remove absent", op: func() error { return svc.RemoveStudent(ctx, "g1", "zed") }, want: []string{"bo"}, wantUpdates: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := repo.groups["g1"].StudentIDs; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("students = %v, want %v", got, tt.want)
			}
			if len(repo.updates) != tt.wantUpdates {
				t.Errorf("updates = %d, want %d", len(repo.updates), tt.wantUpdates)
			}
		})
	}

	if err := svc.AddStudent(ctx, "nope", "bo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddStudent() error = %v, want %v", err, ErrNotFound)
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(&repoMock{groups: map[string]Group{}}, logsvc.NewDiscardLogger())
	blank := "  "
	if err := svc.Update(context.Background(), UpdateGroup{ID: "g1", Name: &blank}); err == nil {
		t.Errorf("Update() with a blank name should fail")
	}
	if err := svc.Update(context.Background(), UpdateGroup{ID: "  "}); err == nil {
		t.Errorf("Update() without an id should fail")
	}
}
