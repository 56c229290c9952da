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
	"github.com/jmylchreest/waxwing/internal/fetch"
	"github.com/jmylchreest/waxwing/internal/logger"
	"github.com/jmylchreest/waxwing/internal/pipeline"
	"github.com/jmylchreest/waxwing/internal/store"
	"github.com/jmylchreest/waxwing/internal/worklist"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <start-index> <end-index>",
	Short: "Fetch catalogued review pages and store extracted records",
	Long: `Load the URL catalog, take the half-open slice [start-index, end-index),
fetch each detail page concurrently, extract the review fields, and store
each record once by (artist, album).

Already stored reviews are never overwritten, so overlapping slices and
repeated runs are safe. URLs that fail with an HTTP error land in the
transport log; pages that fetched but yielded no record land in the retry
log. Both files are plain lists of URLs for a later run to replay.`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	flags := fetchCmd.Flags()
	flags.String("catalog", "", "catalog CSV file (default urls.csv)")
	flags.String("database", "", "sqlite database file (default reviews.db)")
	flags.String("transport-log", "", "transport failure log (default errors.txt)")
	flags.String("retry-log", "", "extraction retry log (default not_done.txt)")
	flags.IntP("concurrency", "c", 0, "concurrent detail fetches (0 = automatic)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "User-Agent header")

	_ = viper.BindPFlag("catalog", flags.Lookup("catalog"))
	_ = viper.BindPFlag("database", flags.Lookup("database"))
	_ = viper.BindPFlag("transport_log", flags.Lookup("transport-log"))
	_ = viper.BindPFlag("retry_log", flags.Lookup("retry-log"))
	_ = viper.BindPFlag("fetch_concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	startIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid start index %q", args[0])
	}
	endIndex, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid end index %q", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	links, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logError("%v", err)
		return err
	}
	if len(links) == 0 {
		return fmt.Errorf("catalog %s is empty; run discover first", cfg.CatalogPath)
	}

	startIndex = max(0, startIndex)
	endIndex = min(len(links), endIndex)
	if startIndex >= endIndex {
		logInfo("Nothing to fetch: slice [%d, %d) is empty", startIndex, endIndex)
		return nil
	}
	urls := catalog.URLs(links[startIndex:endIndex])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer st.Close()

	transportLog, err := worklist.Open(cfg.TransportLogPath)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer transportLog.Close()

	retryLog, err := worklist.Open(cfg.RetryLogPath)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer retryLog.Close()

	client := fetch.NewClient(fetch.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})
	defer client.Close()

	var progress io.Writer
	if !viper.GetBool("quiet") {
		progress = os.Stdout
	}

	pipe := pipeline.New(client, st, transportLog, retryLog, pipeline.Config{
		Workers:  cfg.FetchWorkers,
		Progress: progress,
	})

	logInfo("Fetching %s reviews", humanize.Comma(int64(len(urls))))
	result, runErr := pipe.Run(ctx, urls)
	if progress != nil {
		fmt.Fprintln(progress)
	}

	logInfo("Stored %s new reviews (%d transport failures, %d pending retry)",
		humanize.Comma(int64(result.Inserted)),
		len(result.TransportErrors),
		len(result.PendingRetry))

	if runErr != nil {
		logError("%v", runErr)
		return runErr
	}
	return nil
}
