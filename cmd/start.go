package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/cmd/commands"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/server"
)

func init() {
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the performance API server",
	Long:  `Run migrations, connect to the database cluster and redis, and serve the performance routes`,
	Run: func(cmd *cobra.Command, args []string) {
		log.Debug().Msg("Loading server configuration")
		if viper.ConfigFileUsed() != "" {
			log.Debug().Str("section", "init").Str("path", viper.ConfigFileUsed()).Msg("Configuration file loaded")
		}
		cfg := config.LoadConfig(viper.GetViper())

		log.Debug().Msg("Running migrations")
		commands.Migrate(cfg)

		log.Debug().Str("section", "init").Msg("Starting new server instance")
		srv := server.NewServer(cfg)
		log.Info().Str("section", "init").Msg("Listening for incoming requests")
		srv.Listen()
	},
}
