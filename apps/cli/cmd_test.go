package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/term"

	echoemu "github.com/trezcool/aula/apps/emulator/echo"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/course"
	"github.com/trezcool/aula/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer, *testutil.Emulator) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(testutil.Password), nil }
	t.Cleanup(func() { readPasswordFunc = term.ReadPassword })

	emu := testutil.StartEmulator(t)
	out := new(bytes.Buffer)
	return &commandLine{app: testutil.NewApp(t, emu), out: out}, out, emu
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"aula"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if !strings.Contains(err.Error(), tt.wantErrStr) {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() expected an error")
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("cli.run() output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_auth(t *testing.T) {
	cli, out, _ := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no args", args: []string{"login"}, wantErr: errHelp},
		{name: "whoami: signed out", args: []string{"whoami"}, wantErr: core.ErrAuthenticationRequired},
		{name: "courses: signed out", args: []string{"courses"}, wantErr: core.ErrAuthenticationRequired},
		{name: "signup", args: []string{"signup", "-email", "ana@uni.edu", "-name", "Ana"}, wantOut: "Account created for ana@uni.edu"},
		{name: "signup: twice", args: []string{"signup", "-email", "ana@uni.edu"}, wantErrStr: "already exists"},
		{name: "login: bad email", args: []string{"login", "-email", "ana"}, wantErrStr: "email"},
		{name: "login", args: []string{"login", "-email", "Ana@Uni.edu"}, wantOut: "Signed in as ana@uni.edu"},
		{name: "whoami", args: []string{"whoami", "-verify"}, wantOut: "session: valid"},
		{name: "logout", args: []string{"logout"}, wantOut: "Signed out"},
		{name: "whoami: after logout", args: []string{"whoami"}, wantErr: core.ErrAuthenticationRequired},
	})
}

func Test_commandLine_courses(t *testing.T) {
	cli, out, _ := setup(t)
	ctx := context.Background()
	teacher := testutil.SignIn(t, cli.app, "teacher@uni.edu")

	crs, err := cli.app.Courses().Create(ctx, course.NewCourse{Name: "Compilers", TeacherID: teacher.UserID()})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, student := range []string{"s1", "s2", "s3"} {
		if err := cli.app.Courses().Join(ctx, crs.ID, student); err != nil {
			t.Fatalf("Join() error = %v", err)
		}
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "courses", args: []string{"courses"}, wantOut: "Teaching (1)"},
		{name: "courses: bad role", args: []string{"courses", "-role", "lol"}, wantErr: errHelp},
		{name: "courses: available", args: []string{"courses", "-role", "available"}, wantOut: "Available (0)"},
		{name: "course-create: no name", args: []string{"course-create"}, wantErr: errHelp},
		{name: "course-create", args: []string{"course-create", "-name", "Databases", "-description", "SQL"}, wantOut: "Created course Databases"},
		{name: "course", args: []string{"course", "-id", crs.ID}, wantOut: "students (3): s1, s2, s3"},
		{name: "course: unknown", args: []string{"course", "-id", "nope"}, wantErr: course.ErrNotFound},
		{name: "category-create: bad method", args: []string{"category-create", "-course", crs.ID, "-name", "Labs", "-method", "lol"}, wantErrStr: "groupingMethod"},
		{name: "category-create", args: []string{"category-create", "-course", crs.ID, "-name", "Labs", "-method", "random", "-size", "2"}, wantOut: "[Labs] Group 2"},
		{name: "categories", args: []string{"categories", "-course", crs.ID, "-groups"}, wantOut: "[Labs] Group 1"},
		{name: "activities: no filter", args: []string{"activities"}, wantErr: errHelp},
		{name: "grade: bad criteria", args: []string{"grade", "-activity", "a1", "-student", "s1", "-course", crs.ID, "-criteria", "quality"}, wantErrStr: "is not name=score"},
		{name: "grade: out of range", args: []string{"grade", "-activity", "a1", "-student", "s1", "-course", crs.ID, "-criteria", "quality=120"}, wantErrStr: "criterias[quality]"},
		{name: "grade", args: []string{"grade", "-activity", "a1", "-student", "s1", "-course", crs.ID, "-criteria", "quality=80,teamwork=91"}, wantOut: "Graded s1: 85.50"},
		{name: "grade: regrade", args: []string{"grade", "-activity", "a1", "-student", "s1", "-course", crs.ID, "-criteria", "quality=60"}, wantOut: "Graded s1: 60.00"},
		{name: "grades", args: []string{"grades", "-course", crs.ID}, wantOut: "average: 60.00 over 1 grades"},
		{name: "grade: second student", args: []string{"grade", "-activity", "a1", "-student", "s2", "-course", crs.ID, "-criteria", "quality=90"}, wantOut: "Graded s2: 90.00"},
		{name: "grades: report", args: []string{"grades", "-course", crs.ID, "-report"}, wantOut: "by activity:\n  a1  75.00"},
	})
}

func Test_commandLine_sessionExpired(t *testing.T) {
	cli, out, _ := setup(t)
	testutil.SignIn(t, cli.app, "ana@uni.edu")

	echoemu.NowFunc = func() time.Time { return time.Now().Add(72 * time.Hour) }
	defer func() { echoemu.NowFunc = time.Now }()

	runCLITests(t, cli, out, []cliTest{
		{name: "courses", args: []string{"courses"}, wantErr: errSessionExpired},
		{name: "whoami", args: []string{"whoami"}, wantErr: core.ErrAuthenticationRequired},
	})
}

func Test_parseCriteria(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]float64
		wantErr bool
	}{
		{in: "quality=80", want: map[string]float64{"quality": 80}},
		{in: " quality = 80 , teamwork=90.5,", want: map[string]float64{"quality": 80, "teamwork": 90.5}},
		{in: "", wantErr: true},
		{in: "quality", wantErr: true},
		{in: "=80", wantErr: true},
		{in: "quality=high", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCriteria(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCriteria() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if formatCriteria(got) != formatCriteria(tt.want) {
				t.Errorf("parseCriteria() = %v, want %v", got, tt.want)
			}
		})
	}
}
