package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"devtask/internal/config"
	"devtask/internal/db"
	"devtask/internal/models"
)

var (
	forceInit bool
	initEnv   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize DevTask in the current directory",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialize")
	initCmd.Flags().StringVar(&initEnv, "env", config.EnvLocal, "Environment written to config.yaml (local/dev/prod)")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	workspace := filepath.Join(cwd, db.WorkspaceDir)
	dbPath := filepath.Join(workspace, db.DBFileName)

	if info, err := os.Stat(workspace); err == nil && info.IsDir() {
		if !forceInit {
			return fmt.Errorf("already initialized. Use --force to reinitialize")
		}
		db.CloseDB()
		if err := os.RemoveAll(workspace); err != nil {
			return fmt.Errorf("failed to remove existing workspace directory: %w", err)
		}
	}

	if err := os.MkdirAll(workspace, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	fileCfg := config.Default()
	fileCfg.Env = initEnv
	if err := fileCfg.Validate(); err != nil {
		return err
	}
	if err := config.Write(filepath.Join(workspace, config.FileName), fileCfg); err != nil {
		return err
	}

	if _, err := db.InitDB(dbPath); err != nil {
		return err
	}
	if err := db.SetConfig(models.ConfigInitializedAt, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save initialization time: %w", err)
	}
	logger.WithField("path", workspace).Info("workspace initialized")

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "path": workspace, "env": fileCfg.Env})
		return nil
	}

	fmt.Printf("DevTask initialized in %s/\n", db.WorkspaceDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  devtask user register you@example.com   Create an account")
	fmt.Println("  devtask login you@example.com           Act as that user")
	fmt.Println("  devtask task create \"My first task\"     Create a task")
	return nil
}
