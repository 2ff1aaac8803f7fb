package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganot/crewsync/internal/domain/reconcile"
)

// NewSyncCommand creates the sync command group.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile crew logs with T&M tags",
	}
	cmd.AddCommand(newSyncRunCommand(rootOpts))
	cmd.AddCommand(newSyncPendingCommand(rootOpts))
	return cmd
}

func newSyncRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <crew-log-id>",
		Short: "Sync one crew log to its T&M tag and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.app.Engine.ManualSync(cmd.Context(), args[0])
			if errors.Is(err, reconcile.ErrCrewLogNotFound) {
				return NewExitError(ExitFailure, fmt.Sprintf("crew log %s not found", args[0]))
			}
			if err != nil {
				if result != nil {
					_ = e.out.Error("SYNC_FAILED", result.Error, result)
				}
				return WrapExitError(ExitFailure, "sync failed", err)
			}
			return e.out.Success(result, describeResult(*result))
		},
	}
}

func newSyncPendingCommand(rootOpts *RootOptions) *cobra.Command {
	var retry bool
	cmd := &cobra.Command{
		Use:   "pending <project-id>",
		Short: "List crew logs without a T&M tag, optionally retrying them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			projectID := args[0]
			if !retry {
				logs, err := e.app.CrewLogs.ListUnsynced(cmd.Context(), projectID)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to list unsynced crew logs", err)
				}
				lines := make([]string, 0, len(logs)+1)
				for _, l := range logs {
					lines = append(lines, fmt.Sprintf("%s\t%s", l.ID, l.Date))
				}
				lines = append(lines, fmt.Sprintf("%d unsynced", len(logs)))
				return e.out.Success(map[string]any{"project_id": projectID, "crew_logs": logs, "count": len(logs)}, lines...)
			}

			results, err := e.app.Engine.RetryPending(cmd.Context(), projectID)
			if err != nil {
				return WrapExitError(ExitFailure, "retry failed", err)
			}
			failed := 0
			lines := make([]string, 0, len(results)+1)
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
				lines = append(lines, describeResult(r))
			}
			lines = append(lines, fmt.Sprintf("%d synced, %d failed", len(results)-failed, failed))
			if err := e.out.Success(map[string]any{
				"project_id": projectID,
				"results":    results,
				"synced":     len(results) - failed,
				"failed":     failed,
			}, lines...); err != nil {
				return err
			}
			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d crew logs failed to sync", failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&retry, "retry", false, "run a manual sync for each pending crew log")
	return cmd
}

func describeResult(r reconcile.Result) string {
	switch {
	case r.Error != "":
		return fmt.Sprintf("%s: error: %s", r.CrewLogID, r.Error)
	case r.Created:
		return fmt.Sprintf("%s: created tag %s", r.CrewLogID, r.TMTagID)
	default:
		return fmt.Sprintf("%s: updated tag %s", r.CrewLogID, r.TMTagID)
	}
}
