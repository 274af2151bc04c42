package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/grade"
)

func (cli *commandLine) grade(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("grade")
	activityID := fs.String("activity", "", "The activity id.")
	studentID := fs.String("student", "", "The graded student id.")
	courseID := fs.String("course", "", "The course id.")
	groupID := fs.String("group", "", "The student's group id.")
	criteria := fs.String("criteria", "", "Comma separated name=score pairs, scores from 0 to 100.")
	feedback := fs.String("feedback", "", "A comment for the student.")
	if err := parse(fs, args, activityID, studentID, courseID, criteria); err != nil {
		return err
	}
	scores, err := parseCriteria(*criteria)
	if err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}

	g, err := cli.app.Grades().Save(ctx, grade.SaveGradeInput{
		ActivityID: *activityID,
		CourseID:   *courseID,
		GroupID:    *groupID,
		StudentID:  *studentID,
		Criterias:  scores,
		FinalGrade: grade.FinalGrade(scores),
		Feedback:   *feedback,
		GradedBy:   usr.UserID(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Graded %s: %.2f (%s)\n", g.StudentID, g.FinalGrade, g.ID)
	return nil
}

// parseCriteria reads "name=score,name=score".
func parseCriteria(s string) (map[string]float64, error) {
	scores := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "criteria", Error: fmt.Sprintf("%q is not name=score", pair)})
		}
		name := core.CleanString(kv[0])
		score, err := strconv.ParseFloat(core.CleanString(kv[1]), 64)
		if name == "" || err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "criteria", Error: fmt.Sprintf("%q is not name=score", pair)})
		}
		scores[name] = score
	}
	if len(scores) == 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "criteria", Error: "at least one criterion is required"})
	}
	return scores, nil
}

func (cli *commandLine) grades(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("grades")
	courseID := fs.String("course", "", "List the grades of this course.")
	activityID := fs.String("activity", "", "List the grades of this activity.")
	report := fs.Bool("report", false, "Also print the averages per activity, group and student.")
	if err := parse(fs, args); err != nil {
		return err
	}

	var (
		grades []grade.Grade
		err    error
	)
	switch {
	case *activityID != "":
		grades, err = cli.app.Grades().GetByActivity(ctx, *activityID)
	case *courseID != "":
		grades, err = cli.app.Grades().GetByCourse(ctx, *courseID)
	default:
		fs.Usage()
		return errHelp
	}
	if err != nil {
		return err
	}

	tw := cli.table()
	for _, g := range grades {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", g.ActivityID, g.StudentID, g.FinalGrade, formatCriteria(g.Criterias), g.Feedback)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "average: %.2f over %d grades\n", grade.CourseAverage(grades), len(grades))
	if !*report {
		return nil
	}
	for _, section := range []struct {
		title string
		avgs  map[string]float64
	}{
		{"activity", grade.ActivityAverages(grades)},
		{"group", grade.GroupAverages(grades)},
		{"student", grade.StudentAverages(grades)},
	} {
		if err := cli.printAverages(section.title, section.avgs); err != nil {
			return err
		}
	}
	return nil
}

func (cli *commandLine) printAverages(title string, avgs map[string]float64) error {
	fmt.Fprintf(cli.out, "\nby %s:\n", title)
	ids := make([]string, 0, len(avgs))
	for id := range avgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	tw := cli.table()
	for _, id := range ids {
		fmt.Fprintf(tw, "  %s\t%.2f\n", id, avgs[id])
	}
	return tw.Flush()
}

func formatCriteria(scores map[string]float64) string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, scores[name]))
	}
	return strings.Join(parts, ",")
}
