package cli

import (
	"github.com/spf13/cobra"

	"ossbridge/internal/files"
)

type uploadFlags struct {
	directory     string
	directoryMode string
	filename      string
	filenameMode  string
	signed        bool
	expiry        int
}

func newUploadCommand(build Builder) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload one or more local files",
		Long: "Upload local files to the configured bucket. A single path prints one upload record;\n" +
			"several paths (at most 10) are uploaded as a batch and every file gets its own status.",
		Args: cobra.RangeArgs(1, files.MaxBatchFiles),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := build(cmd)
			if err != nil {
				return err
			}

			req := files.UploadRequest{
				Directory:     flags.directory,
				DirectoryMode: files.DirectoryMode(flags.directoryMode),
				FilenameMode:  files.FilenameMode(flags.filenameMode),
				Signed:        flags.signed,
				SignedExpiry:  flags.expiry,
			}
			for _, path := range args {
				req.Files = append(req.Files, files.FileDescriptor{Content: files.Path(path)})
			}

			if len(args) == 1 {
				req.Files[0].Filename = flags.filename
				result, err := components.Gateway.UploadFile(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			summary, err := components.Gateway.UploadBatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&flags.directory, "dir", "d", "", "target directory (defaults to the configured directory)")
	cmd.Flags().StringVar(&flags.directoryMode, "dir-mode", string(files.DirectoryFlat),
		"no_subdirectory, yyyy_mm_dd_hierarchy or yyyy_mm_dd_combined")
	cmd.Flags().StringVarP(&flags.filename, "name", "n", "", "explicit object filename (single upload only)")
	cmd.Flags().StringVar(&flags.filenameMode, "name-mode", string(files.FilenamePlain), "filename or filename_timestamp")
	cmd.Flags().BoolVar(&flags.signed, "signed", false, "return a signed url instead of the static url")
	cmd.Flags().IntVar(&flags.expiry, "expiry", files.DefaultSignedExpiry, "signed url lifetime in seconds")

	return cmd
}
