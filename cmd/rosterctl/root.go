package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onnwee/student-roster/internal/config"
	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/server"
)

var (
	// Global flags.
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rosterctl",
	Short: "Operate the student roster directly against its stores",
	Long: `rosterctl reads the same environment as the API server (STORE_BACKEND,
DATABASE_URL, CACHE_BACKEND, REDIS_ADDR, ...) and runs coordinator
operations without going through HTTP.

Examples:
  # Enrol a student
  rosterctl add S1 Ada Lovelace CS101

  # List students and show whether the cache answered
  rosterctl list --diagnostics

  # Drop the cached collection
  rosterctl cache clear`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(envFile)
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitWithWriter(os.Stderr, level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

// withServer builds the backends, runs fn and releases them.
func withServer(ctx context.Context, fn func(*server.Server) error) error {
	s, err := server.New(ctx, config.Load())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
