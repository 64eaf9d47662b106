package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "truetrend",
		Short: "Aggregate Chinese platform hot searches and surface organic trends",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(trendsCmd())
	root.AddCommand(lifecycleCmd())
	root.AddCommand(archiveCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func trendsCmd() *cobra.Command {
	var (
		jsonOutput    bool
		limit         int
		hideMarketing bool
		save          bool
		noCache       bool
		platform      string
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Fetch all platforms, merge, and show scored trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			if platform != "" {
				return runPlatformTrends(platform, jsonOutput, limit, noCache)
			}
			return runTrends(jsonOutput, limit, hideMarketing, save, noCache)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max trends to show")
	cmd.Flags().BoolVar(&hideMarketing, "hide-marketing", false, "drop marketing-flagged trends")
	cmd.Flags().BoolVar(&save, "save", false, "persist the cycle to the database")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the platform snapshot cache")
	cmd.Flags().StringVar(&platform, "platform", "", "show one platform's raw hot list (weibo, zhihu, bilibili, rss)")
	return cmd
}

func lifecycleCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lifecycle <keyword>",
		Short: "Show a keyword's lifecycle phases from stored history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func archiveCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		sortBy     string
		noFilter   bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Analyze the historical Weibo hot-search archive",
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.PersistentFlags().IntVar(&limit, "limit", 30, "max keywords to show")
	cmd.PersistentFlags().StringVar(&sortBy, "sort", "burst", "sort order: burst, total, or days")
	cmd.PersistentFlags().BoolVar(&noFilter, "no-filter", false, "keep denylisted entertainment keywords")

	day := &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "Aggregate one archived day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveDay(args[0], jsonOutput, limit, sortBy, noFilter)
		},
	}

	month := &cobra.Command{
		Use:   "month <year> <month>",
		Short: "Aggregate one archived month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveMonth(args[0], args[1], jsonOutput, limit, sortBy, noFilter)
		},
	}

	year := &cobra.Command{
		Use:   "year <year>",
		Short: "Aggregate one archived year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveYear(args[0], jsonOutput, limit, sortBy, noFilter)
		},
	}

	cmd.AddCommand(day, month, year)
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
