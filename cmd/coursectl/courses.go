// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"learnhub/internal/apiclient"
	"learnhub/internal/editable"
	"learnhub/internal/models"
	"learnhub/internal/upload"
	"learnhub/internal/validate"
)

func (c *cli) newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if err := validate.Value(validate.FieldTitle, title); err != nil {
				return err
			}
			api, ctx, err := c.client(cmd.Context())
			if err != nil {
				return err
			}
			m, err := api.CreateCourse(ctx, title)
			if err != nil {
				return describe(err, validate.FieldTitle)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Course.ID)
			return nil
		},
	}
}

func (c *cli) newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <course-id> <field> <value>",
		Short: "Change one field of a course",
		Long: `Change one field of a course. Fields: title, description, category, image.
A category may be given by name or id. An image value is a local file path
that is uploaded first.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q", args[0])
			}
			field, ok := editable.Lookup(args[1])
			if !ok {
				return fmt.Errorf("unknown field %q", args[1])
			}
			api, ctx, err := c.client(cmd.Context())
			if err != nil {
				return err
			}

			course, err := api.GetCourse(ctx, id)
			if err != nil {
				return err
			}

			value := args[2]
			var options []models.CategoryOption
			switch field.Widget {
			case editable.WidgetCombobox:
				cats, err := api.ListCategories(ctx)
				if err != nil {
					return err
				}
				options = models.CategoryOptions(cats)
				value = resolveCategory(options, value)
			case editable.WidgetFile:
				f, err := os.Open(value)
				if err != nil {
					return err
				}
				up, err := api.Upload(ctx, upload.CourseImageEndpoint, filepath.Base(value), f)
				f.Close()
				if err != nil {
					return describe(err, "")
				}
				value = up.URL
			}

			s := editable.NewSession(field, course, options)
			s.Toggle()
			s.SetInput(value)
			if err := s.Submit(ctx, api, nil); err != nil {
				if msg := s.FieldError(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			display, _ := s.Display()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", field.Success, display)
			return nil
		},
	}
}

func (c *cli) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <course-id>",
		Short: "Print a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q", args[0])
			}
			api, ctx, err := c.client(cmd.Context())
			if err != nil {
				return err
			}
			course, err := api.GetCourse(ctx, id)
			if err != nil {
				return err
			}
			cats, err := api.ListCategories(ctx)
			if err != nil {
				return err
			}
			return printCourse(cmd.OutOrStdout(), course, models.CategoryOptions(cats))
		},
	}
}

func (c *cli) newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List course categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, ctx, err := c.client(cmd.Context())
			if err != nil {
				return err
			}
			cats, err := api.ListCategories(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, cat := range cats {
				fmt.Fprintf(tw, "%s\t%s\n", cat.ID, cat.Name)
			}
			return tw.Flush()
		},
	}
}

func printCourse(w io.Writer, course *models.Course, options []models.CategoryOption) error {
	done, total := course.Completion()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", course.ID)
	fmt.Fprintf(tw, "Complete\t%d/%d\n", done, total)
	for _, f := range editable.All {
		s := editable.NewSession(f, course, options)
		display, _ := s.Display()
		if display == "" {
			display = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", f.Label, firstLine(display))
	}
	return tw.Flush()
}

// resolveCategory maps a category name to its id. Unknown names pass
// through unchanged so validation reports them.
func resolveCategory(options []models.CategoryOption, value string) string {
	for _, o := range options {
		if strings.EqualFold(o.Label, value) {
			return o.Value
		}
	}
	return value
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// describe prefers the API's own message for a rejected request.
func describe(err error, field string) error {
	var te *apiclient.TransportError
	if !errors.As(err, &te) {
		return err
	}
	if msg := te.Fields[field]; field != "" && msg != "" {
		return errors.New(msg)
	}
	if te.Message != "" {
		return errors.New(te.Message)
	}
	return err
}
