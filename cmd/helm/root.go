package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helmdeck/helm/internal/config"
	"github.com/helmdeck/helm/internal/handler"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/server"
)

// Shared CLI flags
var (
	cfgFile string
	verbose bool
)

// ServerConfig holds the loaded server configuration (set by main)
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "helm",
		Short: "Helm - chat server for CLI agents",
		Long: `Helm runs a local chat server that mediates streaming turns between
browser clients and AI agent backends (Claude CLI or the Anthropic API).

Just type 'helm' to start the server.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgFile != "" {
				loaded, err := config.Load(cfgFile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", cfgFile, err)
					os.Exit(1)
				}
				*ServerConfig = loaded
			}
			if !verbose {
				logging.Disable()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: embedded defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

// ServeCmd creates the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

// VersionCmd prints the build version
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(handler.Version)
		},
	}
}

func runServe() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := server.Run(ctx, *ServerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
