package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/pocketpause/pausecore/internal/server"
	"github.com/pocketpause/pausecore/internal/utils"
	"github.com/pocketpause/pausecore/pkg/notify"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Long: `Exposes parsing, rules feedback, schedule preview, and the
notification queue over HTTP. Set server.username and server.password
in the config to require basic auth.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		p, store, err := buildParser(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer store.Close()

		queue, err := notify.OpenQueue(viper.GetString("notify.dbpath"))
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer queue.Close()

		srv := server.New(p, store, queue,
			viper.GetString("server.username"),
			viper.GetString("server.password"))
		if err := srv.Start(addr); err != nil {
			utils.Log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8383", "Listen address")
}
