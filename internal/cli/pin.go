package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganot/crewsync/internal/domain/gcaccess"
)

// NewPinCommand creates the pin command group.
func NewPinCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Show or rotate a project's GC dashboard PIN",
	}
	cmd.AddCommand(newPinSubcommand(rootOpts, "show", "Show the current PIN, issuing one if none exists",
		func(ctx context.Context, g *gcaccess.Service, id string) (gcaccess.PinInfo, error) {
			return g.EnsurePin(ctx, id)
		}))
	cmd.AddCommand(newPinSubcommand(rootOpts, "rotate", "Issue a fresh PIN, invalidating the current one",
		func(ctx context.Context, g *gcaccess.Service, id string) (gcaccess.PinInfo, error) {
			return g.IssuePin(ctx, id)
		}))
	return cmd
}

func newPinSubcommand(
	rootOpts *RootOptions,
	use, short string,
	run func(context.Context, *gcaccess.Service, string) (gcaccess.PinInfo, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			info, err := run(cmd.Context(), e.app.Gate, args[0])
			if errors.Is(err, gcaccess.ErrProjectNotFound) {
				return NewExitError(ExitFailure, fmt.Sprintf("project %s not found", args[0]))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "pin "+use+" failed", err)
			}
			return e.out.Success(info, fmt.Sprintf("PIN for %s: %s", info.ProjectID, info.Pin))
		},
	}
}
