package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/repository"
)

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectCreateCommand(rootOpts))
	cmd.AddCommand(newProjectListCommand(rootOpts))
	return cmd
}

type projectCreateOptions struct {
	id             string
	name           string
	client         string
	gcEmail        string
	laborRate      float64
	contractAmount float64
}

func newProjectCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &projectCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			proj, err := e.app.Projects.Create(cmd.Context(), project.CreateRequest{
				ID:             opts.id,
				Name:           opts.name,
				ClientCompany:  opts.client,
				GCEmail:        opts.gcEmail,
				LaborRate:      opts.laborRate,
				ContractAmount: opts.contractAmount,
			})
			switch {
			case errors.Is(err, project.ErrInvalidInput):
				return WrapExitError(ExitCommandError, "invalid project", err)
			case errors.Is(err, repository.ErrDuplicate):
				return NewExitError(ExitFailure, fmt.Sprintf("project %s already exists", opts.id))
			case err != nil:
				return WrapExitError(ExitFailure, "failed to create project", err)
			}

			return e.out.Success(project.Summary{
				ID:            proj.ID,
				Name:          proj.Name,
				ClientCompany: proj.ClientCompany,
				Status:        proj.Status,
				CreatedAt:     proj.CreatedAt,
			}, fmt.Sprintf("Created project %s (%s)", proj.Name, proj.ID))
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "project id (default: generated)")
	cmd.Flags().StringVar(&opts.name, "name", "", "project name")
	cmd.Flags().StringVar(&opts.client, "client", "", "client company")
	cmd.Flags().StringVar(&opts.gcEmail, "gc-email", "", "general contractor email")
	cmd.Flags().Float64Var(&opts.laborRate, "labor-rate", 0, "hourly labor rate")
	cmd.Flags().Float64Var(&opts.contractAmount, "contract-amount", 0, "contract amount")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			projects, err := e.app.Projects.List(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list projects", err)
			}

			lines := make([]string, 0, len(projects))
			for _, p := range projects {
				lines = append(lines, fmt.Sprintf("%s\t%s\t%s", p.ID, p.Name, p.Status))
			}
			if len(lines) == 0 {
				lines = append(lines, "No projects")
			}
			return e.out.Success(map[string]any{"projects": projects, "count": len(projects)}, lines...)
		},
	}
}
