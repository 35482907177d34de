package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/pocketpause/pausecore/internal/utils"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [urls...]",
	Short: "Extract product details from one or more store URLs",
	Long: `Runs each URL through the extraction pipeline (structured data,
heuristics, remote backend) and prints one JSON result per line.
URLs are read from the arguments, or from stdin when none are given.`,
	Run: func(cmd *cobra.Command, args []string) {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		showMetrics, _ := cmd.Flags().GetBool("metrics")

		urls := args
		if len(urls) == 0 {
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if line := sc.Text(); line != "" {
					urls = append(urls, line)
				}
			}
		}
		if len(urls) == 0 {
			utils.Log.Fatal("No URLs to parse")
		}

		p, store, err := buildParser(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer store.Close()

		jobs := make(chan string)
		var mu sync.Mutex
		var wg sync.WaitGroup
		enc := json.NewEncoder(os.Stdout)

		for i := 0; i < concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for url := range jobs {
					result := p.ParseProductURLSmart(context.Background(), url)
					mu.Lock()
					enc.Encode(result)
					mu.Unlock()
				}
			}()
		}

		for _, url := range urls {
			jobs <- url
		}
		close(jobs)
		wg.Wait()

		if showMetrics {
			out, _ := json.MarshalIndent(p.Metrics(), "", "  ")
			fmt.Fprintln(os.Stderr, string(out))
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().IntP("concurrency", "c", 3, "Number of URLs parsed in parallel")
	parseCmd.Flags().BoolP("metrics", "m", false, "Print pipeline metrics to stderr when done")
}
