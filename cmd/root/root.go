package root

import (
	"log/slog"

	"github.com/dinerozz/behavior-monitor/cmd/migrate"
	"github.com/dinerozz/behavior-monitor/cmd/simulate"
	"github.com/dinerozz/behavior-monitor/config"
	"github.com/dinerozz/behavior-monitor/server"
	"github.com/spf13/cobra"
)

func GetRootCmd(config *config.Config, logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "behavior-monitor",
		Short: "Page behavior collector and tracking simulator",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP collector",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunServer(config, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(config.DB.DSN()))
	rootCmd.AddCommand(simulate.GetSimulateCmd(config, logger))

	return rootCmd
}
