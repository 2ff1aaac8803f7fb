package cli

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the embedded schema for the configured driver. The schema is
idempotent, so migrate is safe to run on every deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			return e.out.Success(map[string]string{"driver": e.cfg.DB.Driver},
				"schema applied ("+e.cfg.DB.Driver+")")
		},
	}
}
