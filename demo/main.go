package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:          "demo [command]",
		Short:        "Keeps a list of views in sync with a timeline file",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
