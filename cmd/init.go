package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracefetch/tracefetch/internal/config"
)

var (
	// Config flags
	cfgServerAddress string
	cfgServerScheme  string
	cfgAssets        []string
	cfgClient        string
	cfgOutDir        string
	cfgLogLevel      string
	forceInit        bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tracefetch configuration",
	Long:  `Create the tracefetch home directory and write a config file with the chosen settings.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	// Get default config for flag defaults
	def := config.DefaultConfig()

	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	initCmd.Flags().StringVar(&cfgServerAddress, "server-address", def.Server.Address, "Asset server host")
	initCmd.Flags().StringVar(&cfgServerScheme, "scheme", def.Server.Scheme, "URL scheme (http/https)")
	initCmd.Flags().StringSliceVar(&cfgAssets, "assets", def.Assets.Allowed, "Allowed asset names")
	initCmd.Flags().StringVar(&cfgClient, "client", def.Trace.Client, "Trace client (native/curl)")
	initCmd.Flags().StringVar(&cfgOutDir, "out-dir", def.Collect.OutDir, "Default directory for collected logs")
	initCmd.Flags().StringVar(&cfgLogLevel, "log-level", def.Log.Level, "Log level (debug/info/warn/error)")
}

func runInit(cmd *cobra.Command, args []string) error {
	home := config.GetHome()
	configPath := config.DefaultPath()

	// Check if already initialized
	if _, err := os.Stat(configPath); err == nil {
		if !forceInit {
			return fmt.Errorf("already initialized at %s. Use --force to re-initialize", home)
		}
		fmt.Printf("Overwriting existing config at %s...\n", configPath)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", home, err)
	}

	// Start with default config
	cfg := config.DefaultConfig()

	// Override with provided flags only
	if cmd.Flags().Changed("server-address") {
		cfg.Server.Address = cfgServerAddress
	}
	if cmd.Flags().Changed("scheme") {
		cfg.Server.Scheme = cfgServerScheme
	}
	if cmd.Flags().Changed("assets") {
		cfg.Assets.Allowed = cfgAssets
	}
	if cmd.Flags().Changed("client") {
		cfg.Trace.Client = cfgClient
	}
	if cmd.Flags().Changed("out-dir") {
		cfg.Collect.OutDir = cfgOutDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = cfgLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save config
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Initialized tracefetch at %s\n", home)
	fmt.Printf("  config:  %s\n", configPath)
	fmt.Printf("  assets:  %s\n", strings.Join(cfg.Assets.Allowed, ", "))
	fmt.Printf("  server:  %s://%s%s\n", cfg.Server.Scheme, cfg.Server.Address, cfg.Server.BasePath)
	return nil
}
