package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/aula/core/course"
)

func (cli *commandLine) courses(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("courses")
	role := fs.String("role", "all", "One of all, available, created or enrolled.")
	if err := parse(fs, args); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}

	svc := cli.app.Courses()
	switch *role {
	case "all":
		p, err := svc.Partition(ctx, usr.UserID())
		if err != nil {
			return err
		}
		cli.printCourses("Teaching", p.Created)
		cli.printCourses("Enrolled", p.Enrolled)
		cli.printCourses("Available", p.Available)
		return nil
	case "available":
		courses, err := svc.GetAvailable(ctx, usr.UserID())
		if err != nil {
			return err
		}
		cli.printCourses("Available", courses)
	case "created":
		courses, err := svc.GetCreated(ctx, usr.UserID())
		if err != nil {
			return err
		}
		cli.printCourses("Teaching", courses)
	case "enrolled":
		courses, err := svc.GetEnrolled(ctx, usr.UserID())
		if err != nil {
			return err
		}
		cli.printCourses("Enrolled", courses)
	default:
		fs.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) printCourses(title string, courses []course.Course) {
	fmt.Fprintf(cli.out, "%s (%d)\n", title, len(courses))
	tw := cli.table()
	for _, c := range courses {
		fmt.Fprintf(tw, "  %s\t%s\t%d students\t%s\n", c.ID, c.Name, len(c.StudentIDs), c.Description)
	}
	_ = tw.Flush()
}

func (cli *commandLine) courseDetail(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("course")
	id := fs.String("id", "", "The course id.")
	if err := parse(fs, args, id); err != nil {
		return err
	}
	crs, err := cli.app.Courses().Get(ctx, *id)
	if err != nil {
		return err
	}
	cats, err := cli.app.Categories().GetByCourse(ctx, crs.ID)
	if err != nil {
		return err
	}
	acts, err := cli.app.Activities().GetByCourse(ctx, crs.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s - %s\n", crs.Name, crs.Description)
	fmt.Fprintf(cli.out, "teacher: %s\n", crs.TeacherID)
	fmt.Fprintf(cli.out, "students (%d): %s\n", len(crs.StudentIDs), strings.Join(crs.StudentIDs, ", "))
	fmt.Fprintf(cli.out, "categories (%d)\n", len(cats))
	for _, cat := range cats {
		fmt.Fprintf(cli.out, "  %s  %s  %s/%d\n", cat.ID, cat.Name, cat.GroupingMethod, cat.GroupSize)
	}
	fmt.Fprintf(cli.out, "activities (%d)\n", len(acts))
	for _, act := range acts {
		fmt.Fprintf(cli.out, "  %s  %s  %s\n", act.ID, act.Title, act.Date)
	}
	return nil
}

func (cli *commandLine) courseCreate(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("course-create")
	name := fs.String("name", "", "The course name.")
	desc := fs.String("description", "", "A short description.")
	if err := parse(fs, args, name); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	crs, err := cli.app.Courses().Create(ctx, course.NewCourse{
		Name:        *name,
		Description: *desc,
		TeacherID:   usr.UserID(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created course %s (%s)\n", crs.Name, crs.ID)
	return nil
}

func (cli *commandLine) join(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("join")
	id := fs.String("course", "", "The course id.")
	if err := parse(fs, args, id); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := cli.app.Courses().Join(ctx, *id, usr.UserID()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Enrolled in %s\n", *id)
	return nil
}
