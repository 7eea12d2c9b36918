package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	// Backend for the protocol library's logging.
	_ "github.com/tliron/commonlog/simple"

	"probe.dev/pkg/probe/internal/domain"
	"probe.dev/pkg/probe/internal/lsp"
)

const serverName = "probe"

// serveCmd represents the serve command.
var serveCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	var transport string

	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server",
		Long: `Run the probe language server. It provides a "Debug" code lens on every
debuggable function of Solidity test files (*.t.sol).`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			selected, err := lsp.ParseTransport(viper.GetString(transportConfigKey))
			if err != nil {
				return err
			}

			verbose := viper.GetBool(logVerboseKey)
			configureProtocolLogging(verbose)

			lenses := domain.NewDebugLensAdapter(selector)
			server := lsp.NewServer(serverName, buildVersion(), verbose, lenses, fsAdapter)

			defer server.Close()

			return server.Run(selected, viper.GetString(addressConfigKey))
		},
	}

	cmd.Flags().StringVar(&transport, transportFlagName, viper.GetString(transportConfigKey), "transport: stdio, tcp or websocket")
	bindFlagToConfig(cmd.Flags().Lookup(transportFlagName), transportConfigKey)

	cmd.Flags().StringVar(&address, addressFlagName, viper.GetString(addressConfigKey), "listen address for tcp and websocket")
	bindFlagToConfig(cmd.Flags().Lookup(addressFlagName), addressConfigKey)

	return cmd
}

// configureProtocolLogging routes the JSON-RPC layer's own logs to stderr,
// which stays free on every transport.
func configureProtocolLogging(verbose bool) {
	verbosity := 1
	if verbose {
		verbosity = 2
	}

	commonlog.Configure(verbosity, nil)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
