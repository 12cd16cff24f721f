package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"devtask/internal/apperr"
	"devtask/internal/assignments"
	"devtask/internal/broker"
	"devtask/internal/comments"
	"devtask/internal/config"
	"devtask/internal/db"
	"devtask/internal/graph"
	"devtask/internal/logging"
	"devtask/internal/notify"
	"devtask/internal/output"
	"devtask/internal/projects"
	"devtask/internal/reminder"
	"devtask/internal/session"
	"devtask/internal/tags"
	"devtask/internal/tasks"
	"devtask/internal/users"
)

var (
	Version    = "0.1.0"
	jsonOutput bool
	asUser     string
	verbose    bool
)

// Runtime state built by the root command before any subcommand runs
var (
	cfg       *config.Config
	logger    = logging.Discard()
	logCloser io.Closer
	events    = broker.New(broker.DefaultBuffer)
)

// commandsExemptFromDB lists commands that don't require database initialization
var commandsExemptFromDB = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "devtask",
	Short: "DevTask - a multi-user task and project tracker",
	Long: `DevTask is a command-line tracker for tasks shared between users and projects.

QUICK START:
  devtask init                                  # Initialize in current directory
  devtask user register alice@example.com       # Create an account
  devtask login alice@example.com               # Act as that user
  devtask task create "Fix bug" -p high         # Create a task
  devtask task list                             # Tasks you own or share via projects
  devtask task ready                            # Open tasks with no pending dependencies

STATUSES: not_started (default), pending, in_progress, on_hold, cancelled, completed
PRIORITIES: low, medium (default), high

DEPENDENCIES:
  devtask dep set <task> <dep>...               # Replace the dependency set
  devtask dep dependents <task>                 # Tasks waiting on this one

SHARING:
  devtask project create "Launch"
  devtask member invite <project> bob@example.com
  devtask assign add <task> bob@example.com

IDENTITY: the acting user comes from --as, DEVTASK_USER, or 'devtask login'.

JSON OUTPUT: Add --json flag to any command for machine-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupRuntime(); err != nil {
			return err
		}
		if commandsExemptFromDB[cmd.Name()] {
			return nil
		}
		return db.EnsureInitialized(cfg.DBPath)
	},
}

// Execute runs the CLI and exits with a status derived from the error kind
func Execute() {
	code := run(context.Background())
	os.Exit(code)
}

func run(ctx context.Context) int {
	defer db.CloseDB()
	defer closeLog()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Debug("command failed")
		out().Error(err)
		return apperr.ExitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&asUser, "as", "", "Act as this user (ID or email)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.Version = Version
}

// workspaceDir returns the .devtask directory of the enclosing workspace,
// or the one the current directory would get from 'devtask init'.
func workspaceDir() string {
	if root, err := db.FindWorkspaceRoot(); err == nil {
		return filepath.Join(root, db.WorkspaceDir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return db.WorkspaceDir
	}
	return filepath.Join(cwd, db.WorkspaceDir)
}

func setupRuntime() error {
	dir := workspaceDir()
	loaded, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return apperr.InvalidArgument("%v", err)
	}
	if loaded.DBPath == "" {
		loaded.DBPath = filepath.Join(dir, db.DBFileName)
	}

	level := loaded.LogLevel
	switch {
	case verbose:
		level = logrus.DebugLevel.String()
	case level == "" && loaded.Env == config.EnvLocal:
		level = logrus.WarnLevel.String()
	}

	entry, closer, err := logging.Setup(loaded.Env, level, loaded.ResolveLogPath(loaded.DBPath))
	if err != nil {
		return err
	}
	closeLog()
	cfg, logger, logCloser = loaded, entry.WithField("cmd", "devtask"), closer
	return nil
}

func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

func out() output.Formatter {
	return output.New(jsonOutput)
}

// IsJSONOutput reports whether --json was given
func IsJSONOutput() bool {
	return jsonOutput
}

// services bundles the domain services over the open workspace database
type services struct {
	users       *users.Service
	tasks       *tasks.Service
	graph       *graph.Manager
	assignments *assignments.Service
	projects    *projects.Service
	comments    *comments.Service
	inbox       *notify.Inbox
	tags        *tags.Catalog
	reminder    *reminder.Checker
	session     *session.Store
}

func svc() *services {
	database := db.GetDB()
	sink := notify.NewStoreSink(database)
	return &services{
		users:       users.New(database, logger),
		tasks:       tasks.New(database, logger),
		graph:       graph.New(database),
		assignments: assignments.New(database, sink, logger),
		projects:    projects.New(database, sink, logger),
		comments:    comments.New(database, sink, events, logger),
		inbox:       notify.NewInbox(database),
		tags:        tags.NewCatalog(database),
		reminder:    reminder.New(database, sink, logger),
		session:     session.NewStore(database),
	}
}

// currentUser resolves the acting user: --as, then DEVTASK_USER or the
// config file, then the stored session.
func currentUser(ctx context.Context, s *services) (string, error) {
	override := asUser
	if override == "" && cfg != nil {
		override = cfg.User
	}
	ref, _, err := s.session.Current(override)
	if err != nil {
		return "", err
	}
	user, err := s.users.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}

// resolveUser turns an ID or email argument into a user ID
func resolveUser(ctx context.Context, s *services, ref string) (string, error) {
	user, err := s.users.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}

// withUser is the common prologue of commands that act as the session user
func withUser(cmd *cobra.Command) (context.Context, *services, string, error) {
	ctx := cmd.Context()
	s := svc()
	user, err := currentUser(ctx, s)
	if err != nil {
		return nil, nil, "", err
	}
	logger.WithFields(logrus.Fields{"command": cmd.CommandPath(), "user": user}).Debug("running")
	return ctx, s, user, nil
}
