package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
)

func newSyncCmd(c *cli) *cobra.Command {
	var resolution string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation cycle against the remote collection",
		Long: `Fetch the remote collection once and resolve the new or updated quotes.

  accept_all  merge every new or updated quote (default)
  ignore      discard them
  prompt      ask for each quote on standard input`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override := func(cfg *config.Config) { cfg.Sync.Resolution = resolution }

			return c.withComponents(cmd, override, func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error {
				result, err := comps.Sync.RunCycle(ctx)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(out, "sync %s: fetched %d\n", result.Outcome, result.Fetched)

				if resolution != config.ResolutionPrompt || result.Batch == nil {
					return nil
				}

				return review(ctx, comps.Sync, result.Batch, cmd.InOrStdin(), out)
			})
		},
	}

	cmd.Flags().StringVarP(&resolution, "resolution", "r", config.ResolutionAcceptAll,
		"how to resolve new or updated quotes (accept_all, ignore, prompt)")

	return cmd
}

// review asks about each pending item. Anything but y or yes rejects it.
// End of input rejects the remaining items.
func review(ctx context.Context, service *app.SyncService, batch *domain.SyncBatch, in io.Reader, out io.Writer) error {
	if _, err := service.BeginReview(ctx, batch.ID); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)

	for _, item := range batch.Items {
		remote := item.Update.Remote
		if remote.ID == nil {
			continue
		}

		_, _ = fmt.Fprintf(out, "accept %q (%s)? [y/N] ", remote.Text, remote.Category)

		answer := ""
		if scanner.Scan() {
			answer = strings.ToLower(strings.TrimSpace(scanner.Text()))
		}

		decide := service.RejectItem
		if answer == "y" || answer == "yes" {
			decide = service.AcceptItem
		}

		if _, err := decide(ctx, batch.ID, *remote.ID); err != nil {
			return err
		}
	}

	return scanner.Err()
}
