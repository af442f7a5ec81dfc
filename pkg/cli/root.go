package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole/pkg/config"
	"github.com/TechXTT/oraconsole/pkg/logging"
)

func version() string {
	return "v0.1.0"
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version())
		},
	}
}

// NewRootCmd builds the top-level `oraconsole` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oraconsole",
		Short: "A small web console for Oracle databases",
		Long: `oraconsole runs SQL and PL/SQL against an Oracle database, either from
a browser (serve) or from the shell (exec).

Connection settings come from the environment or a .env file:
  ORACLE_CONNECTION_STRING, ORACLE_USERNAME, ORACLE_PASSWORD`,
		SilenceUsage: true,
	}
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewExecCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

// setup loads the configuration and builds the logger shared by the
// commands that talk to the database.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
