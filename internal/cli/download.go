package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ossbridge/internal/files"
	"ossbridge/internal/service"
)

func newDownloadCommand(build Builder) *cobra.Command {
	var (
		output string
		byKey  bool
	)

	cmd := &cobra.Command{
		Use:   "download <url>[;<url>...]",
		Short: "Download objects by url or key",
		Long: "Download one object, or several objects given as a ';' separated list.\n" +
			"With --key the argument is an object key in the configured bucket.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd)
			if err != nil {
				return err
			}

			if byKey {
				file, err := components.Gateway.Download(cmd.Context(), service.Target{Key: args[0]})
				if err != nil {
					return err
				}
				return saveFile(cmd, output, file)
			}

			urls := files.SplitURLList(args[0])
			if len(urls) == 1 {
				file, err := components.Gateway.Download(cmd.Context(), service.Target{URL: urls[0]})
				if err != nil {
					return err
				}
				return saveFile(cmd, output, file)
			}

			items, err := components.Gateway.DownloadBatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			failed := 0
			for _, item := range items {
				if item.File == nil {
					failed++
					fmt.Fprintln(cmd.ErrOrStderr(), item.Error)
					continue
				}
				if err := saveFile(cmd, output, item.File); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or existing directory (defaults to the object name)")
	cmd.Flags().BoolVar(&byKey, "key", false, "treat the argument as an object key")

	return cmd
}

func saveFile(cmd *cobra.Command, output string, file *files.ResolvedFile) error {
	if len(file.Filename) == 0 || strings.ContainsAny(file.Filename, `/\`) {
		return fmt.Errorf("unsafe output filename %q", file.Filename)
	}
	path, err := writeOutput(output, file.Filename, file.Content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%s\n", path, file.Size, file.ContentType)
	return nil
}
