package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "plexcurator",
	Short: "AI movie curation for a Plex library",
	Long: `plexcurator syncs a Plex movie library to an OpenAI file-search
assistant and asks it for personalized unwatched recommendations,
delivered as a Plex playlist and a Telegram message.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the plexcurator version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plexcurator version %s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
