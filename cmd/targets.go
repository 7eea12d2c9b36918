package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"probe.dev/pkg/probe/internal/domain"
)

// targetsCmd represents the targets command.
var targetsCmd = newTargetsCmd()

func newTargetsCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:     "targets [paths...]",
		Aliases: []string{"list"},
		Short:   "List debuggable test functions",
		Long:    targetsLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			return workflow.Targets(cmd.Context(), domain.TargetsArgs{
				Paths:   parsePaths(args),
				Include: viper.GetStringSlice(includeConfigKey),
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Threads: viper.GetInt(runParallelConfigKey),
				Format:  format,
			})
		},
	}

	cmd.Flags().IntVarP(&parallel, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files parsed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
