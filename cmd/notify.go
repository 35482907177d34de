package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/pocketpause/pausecore/internal/utils"
	"github.com/pocketpause/pausecore/pkg/notify"
	"github.com/pocketpause/pausecore/pkg/schedule"
)

// notifyCmd represents the notify command
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Work with the notification queue and schedule presets",
}

var notifyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Drain due notifications, batching per user",
	Long: `Claims due notifications, composes one batched notification per
user, and delivers it. With --interval the dispatcher keeps polling
until interrupted; without it a single pass runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")

		queue, err := notify.OpenQueue(viper.GetString("notify.dbpath"))
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer queue.Close()

		d := notify.NewDispatcher(queue, stdoutSender{}, utils.Log)
		if interval > 0 {
			if err := d.Run(context.Background(), interval); err != nil && err != context.Canceled {
				utils.Log.Fatal(err)
			}
			return
		}
		if err := d.RunOnce(context.Background(), time.Now().UTC()); err != nil {
			utils.Log.Fatal(err)
		}
	},
}

var notifyPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Print the built-in schedule presets as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := json.MarshalIndent(schedule.PresetProfiles(), "", "  ")
		os.Stdout.Write(append(out, '\n'))
	},
}

// stdoutSender prints composed notifications instead of pushing them.
// Real delivery channels plug in through notify.Sender.
type stdoutSender struct{}

func (stdoutSender) Send(_ context.Context, userID string, n schedule.Notification) error {
	return json.NewEncoder(os.Stdout).Encode(map[string]any{
		"userId":       userID,
		"notification": n,
	})
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyRunCmd)
	notifyCmd.AddCommand(notifyPresetsCmd)

	notifyRunCmd.Flags().DurationP("interval", "i", 0, "Keep polling at this interval (example: 30s). 0 runs once")
}
