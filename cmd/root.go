// Package cmd provides the root command and CLI setup for probe.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"probe.dev/pkg/probe/internal/adapter"
	"probe.dev/pkg/probe/internal/controller"
	"probe.dev/pkg/probe/internal/domain"
	m "probe.dev/pkg/probe/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var solidityAdapter adapter.SolidityFileAdapter
var selector domain.Selector
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// includePatterns replaces the default test file pattern when set.
var includePatterns []string

// formatFlag selects table, json or yaml output.
var formatFlag string

// logFileFlag and verboseFlag control the global logger.
var logFileFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	solidityAdapter = adapter.NewLocalSolidityFileAdapter()
	selector = domain.NewSelector(solidityAdapter)
	workflow = domain.NewWorkflow(fsAdapter, selector, ui)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./test/...     recursively scan the test directory
  - ./test         scan only the files directly inside test
  - a.t.sol        use an explicit file`

const rootLongDescription = `Probe finds the debuggable test functions of Solidity projects.

It runs as a language server that puts a "Debug" code lens above every
public or external zero-argument function of a test contract, and offers
command-line tools to list the same targets and to decode solc source maps.

` + pathPatternsHelp

const targetsLongDescription = `List the debug targets of the Solidity test files under the given
paths (default: ./...). Test files are matched with --include (default
**/*.t.sol) and filtered with --exclude.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Solidity test debugging helper",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching a doublestar pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&includePatterns, includeFlagName, "i", viper.GetStringSlice(includeConfigKey), "include files matching a doublestar pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(includeFlagName), includeConfigKey)

	cmd.PersistentFlags().StringVarP(&formatFlag, formatFlagName, "f", viper.GetString(formatConfigKey), "output format: table, json or yaml")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(formatFlagName), formatConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

func outputFormat() (controller.OutputFormat, error) {
	return controller.ParseOutputFormat(viper.GetString(formatConfigKey))
}
