package container

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/activity"
	"github.com/trezcool/aula/core/auth"
	"github.com/trezcool/aula/core/category"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/core/grade"
	"github.com/trezcool/aula/core/group"
	"github.com/trezcool/aula/core/submission"
	roblesvc "github.com/trezcool/aula/services/roble"
	fileprefs "github.com/trezcool/aula/storage/prefs/file"
	inmemprefs "github.com/trezcool/aula/storage/prefs/inmem"
	pgprefs "github.com/trezcool/aula/storage/prefs/postgres"
	redisprefs "github.com/trezcool/aula/storage/prefs/redis"
	roblerepos "github.com/trezcool/aula/storage/roble"
)

type (
	Deps struct {
		Conf   *core.Config
		Logger core.Logger
		Prefs  core.Preferences
		// HTTPClient defaults to one honoring Conf.Roble.Timeout.
		HTTPClient *http.Client
	}

	// Container wires data sources, repositories and services once, in dependency order.
	Container struct {
		conf   *core.Config
		logger core.Logger
		prefs  core.Preferences

		authClient *roblesvc.AuthClient
		executor   *roblesvc.Executor
		database   *roblesvc.Database

		authSvc       *auth.Service
		courseSvc     *course.Service
		categorySvc   *category.Service
		groupSvc      *group.Service
		activitySvc   *activity.Service
		submissionSvc *submission.Service
		gradeSvc      *grade.Service
	}
)

func New(deps Deps) *Container {
	client := deps.HTTPClient
	if client == nil {
		client = roblesvc.NewHTTPClient(deps.Conf.Roble.Timeout)
	}

	c := &Container{conf: deps.Conf, logger: deps.Logger, prefs: deps.Prefs}

	// data sources: one executor shared by every table
	c.authClient = roblesvc.NewAuthClient(deps.Conf.AuthBaseURL(), client, deps.Prefs, deps.Logger)
	c.executor = roblesvc.NewExecutor(client, deps.Prefs, c.authClient, deps.Logger)
	c.database = roblesvc.NewDatabase(deps.Conf.DatabaseBaseURL(), c.executor, deps.Logger)

	// repositories & services
	c.authSvc = auth.NewService(roblerepos.NewAuthRepository(c.authClient, deps.Logger), deps.Prefs, deps.Logger)
	c.courseSvc = course.NewService(roblerepos.NewCourseRepository(c.database, deps.Logger), deps.Logger)
	c.groupSvc = group.NewService(roblerepos.NewGroupRepository(c.database, deps.Logger), deps.Logger)
	c.categorySvc = category.NewService(
		roblerepos.NewCategoryRepository(c.database, deps.Logger),
		c.groupSvc,
		deps.Logger,
		deps.Conf.Grouping.Seed,
	)
	c.activitySvc = activity.NewService(roblerepos.NewActivityRepository(c.database, deps.Logger))
	c.submissionSvc = submission.NewService(roblerepos.NewSubmissionRepository(c.database, deps.Logger))
	c.gradeSvc = grade.NewService(roblerepos.NewGradeRepository(c.database, deps.Logger))
	return c
}

func (c *Container) Config() *core.Config             { return c.conf }
func (c *Container) Logger() core.Logger              { return c.logger }
func (c *Container) Preferences() core.Preferences    { return c.prefs }
func (c *Container) Auth() *auth.Service              { return c.authSvc }
func (c *Container) Courses() *course.Service         { return c.courseSvc }
func (c *Container) Categories() *category.Service    { return c.categorySvc }
func (c *Container) Groups() *group.Service           { return c.groupSvc }
func (c *Container) Activities() *activity.Service    { return c.activitySvc }
func (c *Container) Submissions() *submission.Service { return c.submissionSvc }
func (c *Container) Grades() *grade.Service           { return c.gradeSvc }

// NewPreferences opens the session store selected by conf.Prefs.Backend.
// The returned close func releases its connection, if any.
func NewPreferences(ctx context.Context, conf *core.Config) (core.Preferences, func() error, error) {
	noop := func() error { return nil }
	switch conf.Prefs.Backend {
	case "memory":
		return inmemprefs.NewPreferences(), noop, nil
	case "", "file":
		return fileprefs.NewPreferences(conf.Prefs.Path), noop, nil
	case "redis":
		rdb, err := redisprefs.Connect(ctx, conf.Prefs.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return redisprefs.NewPreferences(rdb, conf.Prefs.RedisPrefix+":"+conf.Roble.ProjectID), rdb.Close, nil
	case "postgres":
		db, err := pgprefs.Open(conf.Prefs.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pgprefs.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pgprefs.NewPreferences(db, conf.Roble.ProjectID), db.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown preferences backend %q", conf.Prefs.Backend)
	}
}
