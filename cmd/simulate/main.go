package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	natsURL string
)

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "simulate drives a scripted reader through the survey and recommendation flow",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:3000/api", "API base URL")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", "nats://localhost:4222", "NATS server URL")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}
