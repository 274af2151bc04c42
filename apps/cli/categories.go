package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/aula/core/category"
	"github.com/trezcool/aula/core/group"
)

func (cli *commandLine) categories(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("categories")
	courseID := fs.String("course", "", "The course id.")
	withGroups := fs.Bool("groups", false, "Also list the groups of every category.")
	if err := parse(fs, args, courseID); err != nil {
		return err
	}
	cats, err := cli.app.Categories().GetByCourse(ctx, *courseID)
	if err != nil {
		return err
	}

	var groups map[string][]group.Group
	if *withGroups {
		ids := make([]string, 0, len(cats))
		for _, cat := range cats {
			ids = append(ids, cat.ID)
		}
		groups = cli.app.Groups().GetByCategories(ctx, ids)
	}

	tw := cli.table()
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\tsize %d\n", cat.ID, cat.Name, cat.GroupingMethod, cat.GroupSize)
		for _, grp := range groups[cat.ID] {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", grp.ID, grp.Name, strings.Join(grp.StudentIDs, ","))
		}
	}
	return tw.Flush()
}

func (cli *commandLine) categoryCreate(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("category-create")
	courseID := fs.String("course", "", "The course id.")
	name := fs.String("name", "", "The category name.")
	method := fs.String("method", category.GroupingManual, "How groups are formed: manual, random or selfAssigned.")
	size := fs.Int("size", 1, "Maximum members per group.")
	if err := parse(fs, args, courseID, name); err != nil {
		return err
	}

	crs, err := cli.app.Courses().Get(ctx, *courseID)
	if err != nil {
		return err
	}
	cat, groups, err := cli.app.Categories().CreateWithGroups(ctx, category.NewCategory{
		CourseID:       crs.ID,
		Name:           *name,
		GroupingMethod: *method,
		GroupSize:      *size,
	}, crs.StudentIDs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created category %s (%s)\n", cat.Name, cat.ID)
	for _, grp := range groups {
		fmt.Fprintf(cli.out, "  %s: %s\n", grp.Name, strings.Join(grp.StudentIDs, ", "))
	}
	return nil
}

func (cli *commandLine) groups(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("groups")
	categoryID := fs.String("category", "", "The category id.")
	if err := parse(fs, args, categoryID); err != nil {
		return err
	}
	groups, err := cli.app.Groups().GetByCategory(ctx, *categoryID)
	if err != nil {
		return err
	}
	tw := cli.table()
	for _, grp := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%d members\t%s\n", grp.ID, grp.Name, len(grp.StudentIDs), strings.Join(grp.StudentIDs, ","))
	}
	return tw.Flush()
}

func (cli *commandLine) groupJoin(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("group-join")
	groupID := fs.String("group", "", "The group id.")
	if err := parse(fs, args, groupID); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := cli.app.Groups().AddStudent(ctx, *groupID, usr.UserID()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Joined group %s\n", *groupID)
	return nil
}

func (cli *commandLine) groupLeave(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("group-leave")
	groupID := fs.String("group", "", "The group id.")
	if err := parse(fs, args, groupID); err != nil {
		return err
	}
	usr, err := cli.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := cli.app.Groups().RemoveStudent(ctx, *groupID, usr.UserID()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Left group %s\n", *groupID)
	return nil
}
