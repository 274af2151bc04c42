package container_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aula/apps/container"
	echoemu "github.com/trezcool/aula/apps/emulator/echo"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/activity"
	"github.com/trezcool/aula/core/category"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/grade"
	"github.com/trezcool/aula/core/submission"
	"github.com/trezcool/aula/tests"
)

func TestContainer_CourseWorkflow(t *testing.T) {
	ctx := context.Background()
	emu := testutil.StartEmulator(t)

	teacherApp := testutil.NewApp(t, emu)
	teacher := testutil.SignIn(t, teacherApp, "teacher@uni.edu")
	require.NotEmpty(t, teacher.ID)

	crs, err := teacherApp.Courses().Create(ctx, course.NewCourse{Name: "Algorithms", TeacherID: teacher.UserID()})
	require.NoError(t, err)
	require.NotEmpty(t, crs.ID)
	assert.Equal(t, []string{}, crs.StudentIDs)

	// students enroll from their own sessions
	students := make([]string, 0, 5)
	for _, email := range []string{"s1@uni.edu", "s2@uni.edu", "s3@uni.edu", "s4@uni.edu", "s5@uni.edu"} {
		app := testutil.NewApp(t, emu)
		usr := testutil.SignIn(t, app, email)
		p, err := app.Courses().Partition(ctx, usr.UserID())
		require.NoError(t, err)
		require.Len(t, p.Available, 1)
		require.NoError(t, app.Courses().Join(ctx, crs.ID, usr.UserID()))
		require.NoError(t, app.Courses().Join(ctx, crs.ID, usr.UserID()))
		students = append(students, usr.UserID())
	}

	crs, err = teacherApp.Courses().Get(ctx, crs.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, students, crs.StudentIDs)
	created, err := teacherApp.Courses().GetCreated(ctx, teacher.UserID())
	require.NoError(t, err)
	assert.Len(t, created, 1)

	// random grouping over the roster
	cat, groups, err := teacherApp.Categories().CreateWithGroups(ctx, category.NewCategory{
		CourseID:       crs.ID,
		Name:           "Labs",
		GroupingMethod: category.GroupingRandom,
		GroupSize:      2,
	}, crs.StudentIDs)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	stored, err := teacherApp.Groups().GetByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	var dealt []string
	for _, g := range stored {
		assert.Equal(t, cat.ID, g.CategoryID)
		dealt = append(dealt, g.StudentIDs...)
	}
	sort.Strings(dealt)
	want := append([]string(nil), students...)
	sort.Strings(want)
	assert.Equal(t, want, dealt)

	byCat := teacherApp.Groups().GetByCategories(ctx, []string{cat.ID, "missing"})
	assert.Len(t, byCat[cat.ID], 3)
	assert.Empty(t, byCat["missing"])

	// activity, submission & grade upserts
	act, err := teacherApp.Activities().Create(ctx, activity.NewActivity{Title: "Lab 1", CourseID: crs.ID, CategoryID: cat.ID})
	require.NoError(t, err)

	studentApp := testutil.NewApp(t, emu)
	student := testutil.SignIn(t, studentApp, "s1@uni.edu")
	for _, content := range []string{"draft", "final"} {
		_, err := studentApp.Submissions().Submit(ctx, submission.NewSubmission{
			StudentID:  student.UserID(),
			ActivityID: act.ID,
			Content:    content,
			CourseID:   crs.ID,
		})
		require.NoError(t, err)
	}
	subs, err := teacherApp.Submissions().GetByActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "final", subs[0].Content)

	for _, score := range []float64{70, 95} {
		criterias := map[string]float64{"quality": score}
		_, err := teacherApp.Grades().Save(ctx, grade.SaveGradeInput{
			ActivityID: act.ID,
			CourseID:   crs.ID,
			StudentID:  student.UserID(),
			Criterias:  criterias,
			FinalGrade: grade.FinalGrade(criterias),
			GradedBy:   teacher.UserID(),
		})
		require.NoError(t, err)
	}
	grades, err := teacherApp.Grades().GetByCourse(ctx, crs.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 95.0, grades[0].FinalGrade)
	assert.Equal(t, map[string]float64{"quality": 95}, grades[0].Criterias)
	assert.Equal(t, act.ID, grades[0].AssessmentID)
}

func TestContainer_TokenRefresh(t *testing.T) {
	ctx := context.Background()
	emu := testutil.StartEmulator(t)
	app := testutil.NewApp(t, emu)
	testutil.SignIn(t, app, "ana@uni.edu")

	oldToken, err := app.Preferences().Retrieve(ctx, core.PrefToken)
	require.NoError(t, err)

	defer func() { echoemu.NowFunc = time.Now }()

	t.Run("expired access token is refreshed once", func(t *testing.T) {
		echoemu.NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err := app.Courses().GetAvailable(ctx, "anyone")
		require.NoError(t, err)

		newToken, err := app.Preferences().Retrieve(ctx, core.PrefToken)
		require.NoError(t, err)
		assert.NotEqual(t, oldToken, newToken)
	})

	t.Run("expired refresh token surfaces the 401", func(t *testing.T) {
		echoemu.NowFunc = func() time.Time { return time.Now().Add(48 * time.Hour) }
		before, _ := app.Preferences().Retrieve(ctx, core.PrefToken)

		_, err := app.Courses().GetAvailable(ctx, "anyone")
		assert.True(t, core.IsUnauthorized(err), "GetAvailable() error = %v", err)

		after, _ := app.Preferences().Retrieve(ctx, core.PrefToken)
		assert.Equal(t, before, after)
	})
}

func TestContainer_SignedOut(t *testing.T) {
	ctx := context.Background()
	emu := testutil.StartEmulator(t)
	app := testutil.NewApp(t, emu)

	_, err := app.Courses().GetAvailable(ctx, "anyone")
	assert.True(t, errors.Is(err, core.ErrAuthenticationRequired), "GetAvailable() error = %v", err)

	testutil.SignIn(t, app, "ana@uni.edu")
	assert.True(t, app.Auth().VerifySession(ctx))
	require.NoError(t, app.Auth().Logout(ctx))
	assert.False(t, app.Auth().VerifySession(ctx))

	_, err = app.Courses().GetAvailable(ctx, "anyone")
	assert.True(t, errors.Is(err, core.ErrAuthenticationRequired))
}

func TestNewPreferences(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "memory", backend: "memory"},
		{name: "file", backend: "file"},
		{name: "default is file", backend: ""},
		{name: "unknown", backend: "etcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{}
			conf.Prefs.Backend = tt.backend
			conf.Prefs.Path = filepath.Join(t.TempDir(), "session.json")

			prefs, closeFn, err := container.NewPreferences(ctx, conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()
			testutil.CheckPreferences(t, prefs)
		})
	}
}
