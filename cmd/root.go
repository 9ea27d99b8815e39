// Package cmd implements the dijkstraviz command line.
package cmd

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/ui"
)

var version = "0.3.0"

var (
	configPath string
	debugMode  bool
	quiet      bool

	cfg    config.Config
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

var rootCmd = &cobra.Command{
	Use:   "dijkstraviz",
	Short: "Generate, drag and search random weighted graphs",
	Long: ui.Brand.Sprint("dijkstraviz") + " draws random graphs whose edge weights are the distances between nodes\n" +
		ui.Subtle.Sprint("Drag nodes, pick a source and a target, and watch Dijkstra's algorithm find the shortest path"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr())

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if configPath != "" {
			logger.Printf("loaded configuration from %s", configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("dijkstraviz {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	rootCmd.AddCommand(
		runCmd(),
		checkCmd(),
		serveCmd(),
		configCmd(),
	)
}

func setupLogging(w io.Writer) {
	logger.SetOutput(w)
	switch {
	case quiet:
		logger.SetOutput(io.Discard)
	case debugMode:
		logger.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
		logger.Println("Debug mode enabled")
	default:
		logger.SetFlags(log.LstdFlags)
	}
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Bad.Fprintf(rootCmd.ErrOrStderr(), "dijkstraviz: %v\n", err)
	}
	return err
}
