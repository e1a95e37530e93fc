package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

func newAddCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a quote to the collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, _ io.Writer) error {
				_, err := comps.Quotes.Add(ctx, text, category)

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "quote category")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes, optionally within a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withComponents(cmd, nil, func(_ context.Context, comps *bootstrap.Components, out io.Writer) error {
				for _, q := range comps.Quotes.List(category) {
					printQuote(out, q)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category filter (every quote when empty)")

	return cmd
}

func newRandomCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote",
		Long:  "Show a random quote from the category, or from the selected category when none is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, _ io.Writer) error {
				if cmd.Flags().Changed("category") {
					_, err := comps.Quotes.SelectCategory(ctx, category)

					return err
				}

				_, err := comps.Quotes.Random(ctx, "")
				if domain.IsNotFound(err) {
					return nil
				}

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", `select and remember this category ("" selects every category)`)

	return cmd
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error {
				selected, err := comps.Quotes.SelectedCategory(ctx)
				if err != nil {
					return err
				}

				for _, category := range comps.Quotes.Categories() {
					marker := " "
					if strings.EqualFold(category, selected) {
						marker = "*"
					}

					_, _ = fmt.Fprintf(out, "%s %s\n", marker, category)
				}

				return nil
			})
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove the quote with the given ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quote id %q", args[0])
			}

			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error {
				removed, err := comps.Quotes.Remove(ctx, id)
				if err != nil {
					return err
				}

				if !removed {
					return domain.NewNotFoundError("quote", args[0])
				}

				_, _ = fmt.Fprintf(out, "removed quote %d\n", id)

				return nil
			})
		},
	}
}

func printQuote(out io.Writer, q domain.Quote) {
	id := q.IDString()
	if id == "" {
		id = "-"
	}

	_, _ = fmt.Fprintf(out, "%-6s %-12s %s\n", id, q.Category, q.Text)
}
