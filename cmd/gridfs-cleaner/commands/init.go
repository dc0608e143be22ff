package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dualog-students/GridFSCleaner/internal/cli/prompt"
	"github.com/Dualog-students/GridFSCleaner/pkg/config"
)

var (
	initForce bool
	initURI   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample gridfs-cleaner configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/gridfs-cleaner/config.yaml. Use --config to specify a
custom path.

The connection string is prompted for interactively; pass --uri to skip
the prompt.

Examples:
  # Initialize with default location
  gridfs-cleaner init

  # Initialize with custom path, no prompt
  gridfs-cleaner init --config /etc/gridfs-cleaner/config.yaml --uri mongodb://localhost:27017/mydb

  # Force overwrite existing config
  gridfs-cleaner init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().StringVar(&initURI, "uri", "", "MongoDB connection string to write into the config")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	uri := initURI
	if uri == "" {
		var err error
		uri, err = prompt.Input("MongoDB connection string", "mongodb://localhost:27017/mydb")
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return prompt.ErrAborted
			}
			return fmt.Errorf("failed to read connection string: %w", err)
		}
	}

	cfg := config.GetDefaultConfig()
	cfg.Database.URI = uri

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Preview a cleanup with: gridfs-cleaner run")
	fmt.Println("  3. When the preview looks right, delete for real:")
	fmt.Println("     GRIDFS_CLEANER_DRY_RUN=false gridfs-cleaner run")

	return nil
}
