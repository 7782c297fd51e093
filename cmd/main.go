package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "macrodesk",
	Short: "A CLI for managing the Macro Desk analyzer services",
	Long:  `Macro Desk ingests market news feeds and computes a per-instrument directional bias from sentiment, source trust, recency and macro-event signals.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
