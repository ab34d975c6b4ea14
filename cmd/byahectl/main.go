package main

import (
	"fmt"
	"os"
	"time"

	"github.com/maasin/byahenow/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "byahectl",
	Short: "byahectl - command line client for ByaheNow",
	Long: `byahectl talks to a ByaheNow server: watch tricycles and multicabs
near Maasin City, publish a driver's status, check fares and rate trips.

Authenticated commands read the bearer token from --token or BYAHE_TOKEN.
Run "byahectl login" to get one.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("byahectl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("server", envOr("BYAHE_SERVER", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().String("token", os.Getenv("BYAHE_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringP("output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(driversCmd)
	rootCmd.AddCommand(driverCmd)
	rootCmd.AddCommand(faresCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(demoCmd)
}

// newClient builds an API client from the persistent flags
func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	return client.New(server, client.WithToken(token))
}

func requestTimeout(cmd *cobra.Command) time.Duration {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return timeout
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
