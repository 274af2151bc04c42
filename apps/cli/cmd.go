package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/trezcool/aula/apps/container"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp           = errors.New("help provided")
	errSessionExpired = errors.New("session expired, please login again")
)

type (
	commandLine struct {
		app *container.Container
		out io.Writer
	}

	command struct {
		usage string
		run   func(ctx context.Context, args []string) error
	}
)

func (cli *commandLine) commands() map[string]command {
	return map[string]command{
		"login":           {"login -email EMAIL - sign in (the password is prompted next)", cli.login},
		"signup":          {"signup -email EMAIL [-name NAME] - create an account (the password is prompted next)", cli.signup},
		"verify-email":    {"verify-email -email EMAIL -code CODE - confirm an account", cli.verifyEmail},
		"logout":          {"logout - sign out and forget the session", cli.logout},
		"whoami":          {"whoami [-verify] - show the signed in user", cli.whoami},
		"courses":         {"courses [-role all|available|created|enrolled] - list courses", cli.courses},
		"course":          {"course -id COURSE - show a course with its categories and activities", cli.courseDetail},
		"course-create":   {"course-create -name NAME [-description TEXT] - create a course you teach", cli.courseCreate},
		"join":            {"join -course COURSE - enroll in a course", cli.join},
		"categories":      {"categories -course COURSE [-groups] - list the categories of a course", cli.categories},
		"category-create": {"category-create -course COURSE -name NAME [-method manual|random|selfAssigned] [-size N] - create a category", cli.categoryCreate},
		"groups":          {"groups -category CATEGORY - list the groups of a category", cli.groups},
		"group-join":      {"group-join -group GROUP - join a group", cli.groupJoin},
		"group-leave":     {"group-leave -group GROUP - leave a group", cli.groupLeave},
		"activities":      {"activities -course COURSE | -category CATEGORY - list activities", cli.activities},
		"activity-create": {"activity-create -course COURSE -category CATEGORY -title TITLE [-description TEXT] [-date DATE] [-group GROUP] - create an activity", cli.activityCreate},
		"submit":          {"submit -activity ACTIVITY -content TEXT [-group GROUP] [-course COURSE] - hand in (or replace) your work", cli.submit},
		"submissions":     {"submissions -activity ACTIVITY - list the submissions of an activity", cli.submissions},
		"grade":           {"grade -activity ACTIVITY -student STUDENT -course COURSE -criteria name=score,... [-group GROUP] [-feedback TEXT] - grade a student", cli.grade},
		"grades":          {"grades -course COURSE | -activity ACTIVITY [-report] - list grades and averages", cli.grades},
	}
}

func (cli *commandLine) printUsage() {
	cmds := cli.commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(cli.out, "Usage:")
	for _, name := range names {
		fmt.Fprintf(cli.out, "  %s\n", cmds[name].usage)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	cmd, ok := cli.commands()[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	err := cmd.run(ctx, args[2:])
	if core.IsUnauthorized(err) {
		if lErr := cli.app.Auth().Logout(ctx); lErr != nil {
			cli.app.Logger().Error("clearing expired session", lErr)
		}
		return errSessionExpired
	}
	return err
}

// newFlagSet returns a flag set printing its usage on cli.out and never exiting.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args and reports errHelp when a required flag is missing.
func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, val := range required {
		if strings.TrimSpace(*val) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) readPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) currentUser(ctx context.Context) (auth.AuthUser, error) {
	usr, err := cli.app.Auth().CurrentUser(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		return auth.AuthUser{}, core.ErrAuthenticationRequired
	}
	return usr, err
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}
