// Package commands implements the CLI commands for waxwing.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/waxwing/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "waxwing",
	Version: version.String(),
	Short:   "Concurrent harvester for album review pages",
	Long: `Waxwing harvests structured album reviews from a paginated listing site
in two stages that share a CSV catalog of review URLs.

Examples:
  # Collect review links from listing pages 1 through 50
  waxwing discover 1 50

  # Fetch and store reviews for the first 200 catalogued URLs
  waxwing fetch 0 200

  # Re-run a slice after a transient outage; already stored reviews are skipped
  waxwing fetch 0 200

  # Dump the review store
  waxwing export --format jsonl -o reviews.jsonl`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.waxwing.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	// Pick up a local .env before viper reads the environment
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".waxwing")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("WAXWING")
	viper.AutomaticEnv()

	setConfigDefaults()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
