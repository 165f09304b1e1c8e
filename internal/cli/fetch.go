package cli

import (
	"github.com/spf13/cobra"
)

func newFetchCommand(build Builder) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a public http(s) resource anonymously",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd)
			if err != nil {
				return err
			}

			file, err := components.Fetcher.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return saveFile(cmd, output, file)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or existing directory")

	return cmd
}
