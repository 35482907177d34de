package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/pocketpause/pausecore/internal/utils"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/rules"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and train per-domain extraction rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all stored domain rules as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := rules.Open(viper.GetString("rules.dbpath"))
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer store.Close()

		out, _ := json.MarshalIndent(store.ListRules(), "", "  ")
		os.Stdout.Write(append(out, '\n'))
	},
}

var rulesFeedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record a user correction for a parsed URL",
	Long: `Stores the correction and lowers confidence in the domain's rules.
A domain with no stored rules gets a starter rule seeded from the
generic selector lists.`,
	Run: func(cmd *cobra.Command, args []string) {
		url, _ := cmd.Flags().GetString("url")
		name, _ := cmd.Flags().GetString("name")
		price, _ := cmd.Flags().GetString("price")
		image, _ := cmd.Flags().GetString("image")
		if url == "" {
			utils.Log.Fatal("--url is required")
		}

		store, err := rules.Open(viper.GetString("rules.dbpath"))
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer store.Close()

		fb := rules.Feedback{
			URL: url,
			UserCorrection: product.ProductInfo{
				ItemName: name,
				Price:    price,
				ImageURL: image,
			},
			Timestamp: time.Now().UTC(),
		}
		if err := store.AddFeedback(context.Background(), fb); err != nil {
			utils.Log.Fatal(err)
		}
		utils.Log.Info("Feedback recorded")
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesFeedbackCmd)

	rulesFeedbackCmd.Flags().StringP("url", "u", "", "Product URL the feedback is about")
	rulesFeedbackCmd.Flags().StringP("name", "n", "", "Corrected item name")
	rulesFeedbackCmd.Flags().StringP("price", "p", "", "Corrected price")
	rulesFeedbackCmd.Flags().StringP("image", "i", "", "Corrected image URL")
}
