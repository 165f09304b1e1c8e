package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(build Builder) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configured credentials against the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd)
			if err != nil {
				return err
			}

			if err := components.Gateway.ValidateCredentials(cmd.Context()); err != nil {
				return err
			}
			creds := components.Gateway.Credentials()
			fmt.Fprintf(cmd.OutOrStdout(), "credentials ok: bucket %s at %s\n", creds.Bucket, creds.Endpoint)
			return nil
		},
	}
}
