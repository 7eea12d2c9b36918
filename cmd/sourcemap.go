package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"probe.dev/pkg/probe/internal/domain"
	m "probe.dev/pkg/probe/internal/model"
)

// sourceMapCmd represents the sourcemap command.
var sourceMapCmd = newSourceMapCmd()

func newSourceMapCmd() *cobra.Command {
	var mapFile string

	var sourceFile string

	cmd := &cobra.Command{
		Use:   "sourcemap [map]",
		Short: "Decode a compressed solc source map",
		Long: `Decode a compressed solc source map given inline or with --file. With
--source, every entry is also located as line:column in that file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && mapFile == "" {
				return errors.New("a source map argument or --file is required")
			}

			if len(args) == 1 && mapFile != "" {
				return errors.New("use either a source map argument or --file, not both")
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			sourceMapArgs := domain.SourceMapArgs{
				MapFile: m.Path(mapFile),
				Source:  m.Path(sourceFile),
				Format:  format,
			}
			if len(args) == 1 {
				sourceMapArgs.Raw = args[0]
			}

			return workflow.SourceMap(cmd.Context(), sourceMapArgs)
		},
	}

	cmd.Flags().StringVar(&mapFile, "file", "", "read the source map from a file")
	cmd.Flags().StringVar(&sourceFile, "source", "", "source file used to resolve line and column")

	return cmd
}

func init() {
	rootCmd.AddCommand(sourceMapCmd)
}
