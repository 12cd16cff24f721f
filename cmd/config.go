package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"devtask/internal/apperr"
	"devtask/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Workspace configuration",
	Long: `Read and change .devtask/config.yaml.

Keys: env (local/dev/prod), db_path, log_level, log_path, reminder_interval, user.
DEVTASK_ENV, DEVTASK_DB_PATH, DEVTASK_LOG_LEVEL and DEVTASK_USER override the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in config.yaml",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	f := out()
	if IsJSONOutput() {
		f.JSON(map[string]interface{}{
			"env":               cfg.Env,
			"db_path":           cfg.DBPath,
			"log_level":         cfg.LogLevel,
			"log_path":          cfg.ResolveLogPath(cfg.DBPath),
			"reminder_interval": cfg.ReminderInterval.String(),
			"user":              cfg.User,
		})
		return nil
	}
	f.KeyValue("env", cfg.Env)
	f.KeyValue("db_path", cfg.DBPath)
	f.KeyValue("log_level", valueOrDash(cfg.LogLevel))
	f.KeyValue("log_path", cfg.ResolveLogPath(cfg.DBPath))
	f.KeyValue("reminder_interval", cfg.ReminderInterval.String())
	f.KeyValue("user", valueOrDash(cfg.User))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := filepath.Join(workspaceDir(), config.FileName)
	fileCfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := fileCfg.Set(args[0], args[1]); err != nil {
		return apperr.InvalidArgument("%v", err)
	}
	if err := config.Write(path, fileCfg); err != nil {
		return err
	}
	out().Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
