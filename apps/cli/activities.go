package main

import (
	"context"
	"fmt"

	"github.com/trezcool/aula/core/activity"
	"github.com/trezcool/aula/core/submission"
)

func (cli *commandLine) activities(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("activities")
	courseID := fs.String("course", "", "List the activities of this course.")
	categoryID := fs.String("category", "", "List the activities of this category.")
	if err := parse(fs, args); err != nil {
		return err
	}

	var (
		acts []activity.Activity
		err  error
	)
	switch {
	case *categoryID != "":
		acts, err = cli.app.Activities().GetByCategory(ctx, *categoryID)
	case *courseID != "":
		acts, err = cli.app.Activities().GetByCourse(ctx, *courseID)
	default:
		fs.Usage()
		return errHelp
	}
	if err != nil {
		return err
	}

	tw := cli.table()
	for _, act := range acts {
		fmt.Fprintf(tw, "%s\t%s\t%s\tcategory %s\n", act.ID, act.Title, act.Date, act.CategoryID)
	}
	return tw.Flush()
}

func (cli *commandLine) activityCreate(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("activity-create")
	courseID := fs.String("course", "", "The course id.")
	categoryID := fs.String("category", "", "The category id.")
	title := fs.String("title", "", "The activity title.")
	desc := fs.String("description", "", "What has to be done.")
	date := fs.String("date", "", "Due date.")
	groupID := fs.String("group", "", "Restrict the activity to one group.")
	if err := parse(fs, args, courseID, categoryID, title); err != nil {
		return err
	}
	act, err := cli.app.Activities().Create(ctx, activity.NewActivity{
		Title:       *title,
		Description: *desc,
		Date:        *date,
		CourseID:    *courseID,
		CategoryID:  *categoryID,
		GroupID:     *groupID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created activity %s (%s)\n", act.Title, act.ID)
	return nil
}

func (cli *commandLine) submit(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("submit")
	activityID := fs.String("activity", "", "The activity id.")
	content := fs.String("content", "", "Your answer or a link to it.")
	groupID := fs.String("group", "", "The group you hand in for.")
	courseID := fs.String("course", "", "The course id.")
	if err := parse(fs, args, activityID, content); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	sub, err := cli.app.Submissions().Submit(ctx, submission.NewSubmission{
		StudentID:  usr.UserID(),
		ActivityID: *activityID,
		GroupID:    *groupID,
		Content:    *content,
		CourseID:   *courseID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Submitted %s at %s\n", sub.ID, sub.SubmissionDate)
	return nil
}

func (cli *commandLine) submissions(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("submissions")
	activityID := fs.String("activity", "", "The activity id.")
	if err := parse(fs, args, activityID); err != nil {
		return err
	}
	subs, err := cli.app.Submissions().GetByActivity(ctx, *activityID)
	if err != nil {
		return err
	}
	tw := cli.table()
	for _, sub := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sub.ID, sub.StudentID, sub.SubmissionDate, sub.Content)
	}
	return tw.Flush()
}
