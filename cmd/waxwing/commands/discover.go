package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/waxwing/internal/catalog"
	"github.com/jmylchreest/waxwing/internal/discover"
	"github.com/jmylchreest/waxwing/internal/fetch"
	"github.com/jmylchreest/waxwing/internal/logger"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <start-page> <end-page>",
	Short: "Collect review links from listing pages",
	Long: `Walk the listing pages in the given inclusive range, extract the
review links on each, and merge them into the URL catalog.

Pages past the end of pagination yield no links and are not failures, so a
generous end page is safe. Re-running over an overlapping range is also safe:
the catalog keeps the first occurrence of each URL.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	flags := discoverCmd.Flags()
	flags.String("catalog", "", "catalog CSV file (default urls.csv)")
	flags.String("base-url", "", "listing site base URL")
	flags.IntP("concurrency", "c", discover.DefaultWorkers, "concurrent listing fetches")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "User-Agent header")

	_ = viper.BindPFlag("catalog", flags.Lookup("catalog"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("discover_concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	startPage, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid start page %q", args[0])
	}
	endPage, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid end page %q", args[1])
	}
	if startPage > endPage {
		return fmt.Errorf("start page %d is after end page %d", startPage, endPage)
	}

	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := fetch.NewClient(fetch.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})
	defer client.Close()

	var progress io.Writer
	if !viper.GetBool("quiet") {
		progress = os.Stdout
	}

	crawler := discover.New(client, discover.Config{
		BaseURL:  cfg.BaseURL,
		Workers:  cfg.DiscoverWorkers,
		Progress: progress,
	})

	logInfo("Fetching urls from pages %d to %d", startPage, endPage)
	links := crawler.Discover(ctx, startPage, endPage)
	if progress != nil {
		fmt.Fprintln(progress)
	}
	logInfo("Fetched %s urls", humanize.Comma(int64(len(links))))

	existing, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logError("%v", err)
		return err
	}
	merged := catalog.Merge(existing, links)
	if err := catalog.Save(cfg.CatalogPath, merged); err != nil {
		logError("%v", err)
		return err
	}
	logInfo("Catalog %s now holds %s urls", cfg.CatalogPath, humanize.Comma(int64(len(merged))))

	return ctx.Err()
}
