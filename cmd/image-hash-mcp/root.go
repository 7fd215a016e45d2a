package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-hash-mcp/internal/config"
	"github.com/ironsheep/image-hash-mcp/internal/hasher"
	"github.com/ironsheep/image-hash-mcp/internal/server"
)

// commandContext carries state shared by all subcommands.
type commandContext struct {
	configPath string
	cfg        *config.Config
}

// config loads the configuration once per process.
func (c *commandContext) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// hasher returns a Hasher configured from the loaded settings.
func (c *commandContext) hasher() (*hasher.Hasher, *config.Config, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	return hasher.New(nil, cfg.NormalizeOptions(), hasher.WithDebugLogging(cfg.Debug())), cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "image-hash-mcp",
		Short: "Perceptual image fingerprints as an MCP server and CLI",
		Long: "image-hash-mcp computes 256-bit quadrant-threshold perceptual hashes.\n\n" +
			"Without a subcommand it serves MCP over stdin/stdout.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newHashCommand(ctx))
	rootCmd.AddCommand(newDecodeCommand())
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP requests over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, ctx)
		},
	}
}

func runServer(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	if cfg.Debug() {
		log.Printf("Image Hash MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	if err := srv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image-hash-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
