package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/waxwing/internal/logger"
	"github.com/jmylchreest/waxwing/internal/output"
	"github.com/jmylchreest/waxwing/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the review store as JSON, JSONL, or YAML",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	flags := exportCmd.Flags()
	flags.String("database", "", "sqlite database file (default reviews.db)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")

	_ = viper.BindPFlag("database", flags.Lookup("database"))
}

func runExport(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	formatName, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer st.Close()

	reviews, err := st.All(context.Background())
	if err != nil {
		logError("%v", err)
		return err
	}

	var w io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	logInfo("Exporting %d reviews as %s", len(reviews), format)
	return output.Write(w, format, reviews)
}
