package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
)

func newExportCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error {
				data, err := comps.Transfer.Export(ctx)
				if err != nil {
					return err
				}

				if output == "-" {
					_, err = fmt.Fprintln(out, string(data))

					return err
				}

				if err := os.WriteFile(output, data, 0o600); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}

				_, _ = fmt.Fprintf(out, "exported %s\n", output)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", app.ExportFilename, `output file ("-" for stdout)`)

	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append the quotes of a JSON document",
		Long:  `Append the quotes of a JSON list document. Use "-" to read standard input.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			return c.withComponents(cmd, nil, func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error {
				result, err := comps.Transfer.Import(ctx, document)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(out, "received %d, added %d, skipped %d duplicate(s)\n",
					result.Received, result.Added, result.Duplicates)

				return nil
			})
		},
	}
}

func readDocument(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	return data, nil
}
