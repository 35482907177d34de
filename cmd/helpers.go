package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pocketpause/pausecore/internal/utils"
	"github.com/pocketpause/pausecore/pkg/fetch"
	"github.com/pocketpause/pausecore/pkg/parser"
	"github.com/pocketpause/pausecore/pkg/remote"
	"github.com/pocketpause/pausecore/pkg/rules"
)

// buildParser wires the parse pipeline from config. The rules store is
// returned too so callers can close it; it may be used independently.
func buildParser(cmd *cobra.Command) (*parser.Parser, *rules.Store, error) {
	proxy, _ := cmd.Flags().GetString("proxy")

	fetcher, err := fetch.New(proxy)
	if err != nil {
		return nil, nil, err
	}

	var backend parser.Remote
	if endpoint := viper.GetString("remote.endpoint"); endpoint != "" {
		client, err := remote.New(endpoint, viper.GetString("remote.apikey"), proxy)
		if err != nil {
			return nil, nil, err
		}
		backend = client
	} else {
		utils.Log.Debug("No remote backend configured; only local strategies will run.")
	}

	store, err := rules.Open(viper.GetString("rules.dbpath"))
	if err != nil {
		return nil, nil, err
	}

	p := parser.New(parser.Config{
		Fetcher: fetcher,
		Remote:  backend,
		Rules:   store,
		Log:     utils.Log,
	})
	return p, store, nil
}
