package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ganot/crewsync/internal/repository"
)

// NewAPIKeyCommand creates the apikey command group.
func NewAPIKeyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage operator API keys",
	}
	cmd.AddCommand(newAPIKeyCreateCommand(rootOpts))
	return cmd
}

func newAPIKeyCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var operator, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key for an operator",
		Long: `Create an API key for an operator. The token is printed once and only
its hash is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(operator) == "" {
				return NewExitError(ExitCommandError, "--operator must not be empty")
			}

			e, err := openEnv(cmd.Context(), cmd, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			token := newToken()
			err = e.app.APIKeys.Create(cmd.Context(), token, operator, description)
			if errors.Is(err, repository.ErrDuplicate) {
				return NewExitError(ExitFailure, "token collision, try again")
			}
			if err != nil {
				return WrapExitError(ExitFailure, "failed to create api key", err)
			}

			e.logger.Info("api key created", "operator", operator)
			return e.out.Success(map[string]string{"operator": operator, "token": token},
				fmt.Sprintf("API key for %s: %s", operator, token))
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator name the key authenticates as")
	cmd.Flags().StringVar(&description, "description", "", "free-form note")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func newToken() string {
	return "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
