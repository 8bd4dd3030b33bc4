package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"archmap/backend/internal/graph"
	"archmap/backend/pkg/config"
	"archmap/backend/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	appConfig      *config.Config
	commandTimeout time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "archctl",
	Short: "Application landscape maintenance tool",
	Long:  `Run Cypher queries, apply the graph schema, seed sample data and export the application and flow tables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		Bad.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "timeout", 2*time.Minute, "Deadline for the whole command")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(pingCmd)
}

// openRepository connects lazily; the returned func closes the driver
func openRepository() (*graph.Repository, *graph.Neo4jRunner, func()) {
	repo, neo := graph.Open(appConfig, nil)
	return repo, neo, func() {
		_ = neo.Close(context.Background())
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, commandTimeout)
}

// pingCmd checks Neo4j connectivity
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the Neo4j connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		_, neo, closeFn := openRepository()
		defer closeFn()

		if err := neo.Verify(ctx); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", StatusIcon(false), appConfig.Neo4jURI)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", StatusIcon(true), appConfig.Neo4jURI)
		return nil
	},
}
