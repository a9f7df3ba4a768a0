package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/treeline-dev/treeline/claude"
	"github.com/treeline-dev/treeline/config"
	"github.com/treeline-dev/treeline/engine"
	"github.com/treeline-dev/treeline/gitstate"
)

func newRootCommand(args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "treeline",
		Short:         "Worktree state and diff dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDashboard()
		},
	}

	root.AddCommand(
		newStatusCommand(),
		newLogCommand(),
		newDiffCommand(),
		newSessionsCommand(),
		newHooksCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	}
	return root
}

func loadConfig() config.Config {
	cfg, err := config.LoadFromDefaultPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "treeline warning:", err)
	}
	return cfg
}

func newEngine(cfg config.Config) (*engine.Engine, error) {
	return engine.New(engine.Options{
		StatusDir:       cfg.StatusDir,
		SettingsPath:    cfg.ClaudeSettingsPath,
		PollInterval:    cfg.PollInterval(),
		RefreshDebounce: cfg.RefreshDebounce(),
		WatchDebounce:   cfg.WatchDebounce(),
		MaxWait:         cfg.MaxWait(),
		DiffContext:     cfg.DiffContext,
		Logger:          newLogger(),
	})
}

func runDashboard() error {
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := eng.Start(context.Background(), cwd); err != nil {
		return err
	}

	p := tea.NewProgram(newModel(eng), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List worktrees with branch and dirty state",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := gitstate.NewClient(newLogger())
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			worktrees, err := client.ListWorktrees(cwd)
			if err != nil {
				return err
			}
			for i := range worktrees {
				status, err := client.ReadIndexStatus(worktrees[i].Path)
				if err == nil {
					worktrees[i].Status = &status
				}
			}
			fmt.Print(renderStatusTable(worktrees))
			return nil
		},
	}
}

func newLogCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Show commit history for a worktree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			path, err := targetPath(cmdArgs)
			if err != nil {
				return err
			}
			client, err := gitstate.NewClient(newLogger())
			if err != nil {
				return err
			}
			commits, err := client.WalkHistory(path, offset, limit)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Println(renderCommitLine(c))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum commits to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Commits to skip from the tip")
	return cmd
}

func newDiffCommand() *cobra.Command {
	var staged bool
	var commit string
	cmd := &cobra.Command{
		Use:   "diff [path]",
		Short: "Show working or commit diff for a worktree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			path, err := targetPath(cmdArgs)
			if err != nil {
				return err
			}
			client, err := gitstate.NewClient(newLogger())
			if err != nil {
				return err
			}
			client.SetDiffContext(loadConfig().DiffContext)

			if strings.TrimSpace(commit) != "" {
				cd, err := client.CommitDiff(context.Background(), path, commit)
				if err != nil {
					return err
				}
				fmt.Print(renderCommitDiff(cd))
				return nil
			}

			wd, err := client.ReadWorkingTreeDiff(path)
			if err != nil {
				return err
			}
			if staged {
				fmt.Print(renderFileDiffs(wd.Staged))
				return nil
			}
			fmt.Print(renderWorkingDiff(wd))
			return nil
		},
	}
	cmd.Flags().BoolVar(&staged, "staged", false, "Show only the staged half")
	cmd.Flags().StringVar(&commit, "commit", "", "Show a commit's diff against its first parent")
	return cmd
}

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect agent session status records",
	}
	cmd.AddCommand(newSessionsListCommand(), newSessionsDeleteCommand())
	return cmd
}

func newSessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := loadConfig()
			store := claude.NewStore(cfg.StatusDir, newLogger())
			sessions, err := store.List()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no session records")
				return nil
			}
			now := time.Now()
			for i := range sessions {
				sessions[i].Stale = sessions[i].StaleAt(now)
			}
			fmt.Print(renderSessionsTable(sessions))
			return nil
		},
	}
}

func newSessionsDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete one session's status record",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			cfg := loadConfig()
			if !yes {
				ok, err := confirm("Delete session record?",
					fmt.Sprintf("Removes %s.json from %s.", cmdArgs[0], cfg.StatusDir))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			store := claude.NewStore(cfg.StatusDir, newLogger())
			return store.Delete(cmdArgs[0])
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func newHooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the session status hooks",
	}
	cmd.AddCommand(newHooksStatusCommand(), newHooksInstallCommand(), newHooksRemoveCommand())
	return cmd
}

func hooksManager() *claude.HooksManager {
	cfg := loadConfig()
	return claude.NewHooksManager(cfg.ClaudeSettingsPath, cfg.StatusDir, newLogger())
}

func newHooksStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the status hooks are installed",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			state := hooksManager().Check()
			if state.Configured {
				fmt.Println("hooks: installed")
			} else {
				fmt.Println("hooks: not installed")
			}
			if state.StatusDirExists {
				fmt.Println("status dir: present")
			} else {
				fmt.Println("status dir: missing")
			}
			return nil
		},
	}
}

func newHooksInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the status hooks into the agent settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := hooksManager().Apply(); err != nil {
				return err
			}
			fmt.Println("hooks installed")
			return nil
		},
	}
}

func newHooksRemoveCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the status hooks from the agent settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !yes {
				ok, err := confirm("Remove status hooks?",
					"Session state will stop updating until reinstalled.")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			if err := hooksManager().Remove(); err != nil {
				return err
			}
			fmt.Println("hooks removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// targetPath resolves the optional positional worktree path, defaulting to
// the current directory.
func targetPath(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	return os.Getwd()
}
