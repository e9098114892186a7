package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"teamline/internal/app"
	"teamline/internal/config"
	"teamline/internal/db"
	"teamline/internal/engine"
	"teamline/internal/migrate"
	"teamline/internal/repo"
	"teamline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "Teamline CLI",
	Long: `Teamline tracks projects, teams, and tasks, and keeps team workload balanced.
- Workspace: the .teamline directory holding the local database.
- Users carry a productivity score, availability, and assignment rules.
- Tasks carry a workload weight; projects carry a difficulty factor.
- 'tl report workload' summarizes everyone's load against the threshold.
- 'tl task suggest <id>' scores the project's team members and records
  the best candidate without assigning the task.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TEAMLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("project", "", "project id (overrides config default)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
}

func registerCommands() {
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(teamCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(notificationCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Manage workspace config"}

	var projectID string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default teamline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(projectID)), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&projectID, "project-id", "default", "default project id")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			fmt.Println("db:", db.Path(workspace))
			return printJSON(cfg)
		},
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Validate and install a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file required")
			}
			cfg, err := config.FromFile(file)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			path := config.Path(viper.GetString("workspace"))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("imported config for project %s into %s\n", cfg.Project.ID, path)
			return nil
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "config file to import")

	cfgCmd.AddCommand(initCmd)
	cfgCmd.AddCommand(showCmd)
	cfgCmd.AddCommand(importCmd)
	return cfgCmd
}

func logCmd() *cobra.Command {
	lg := &cobra.Command{Use: "log", Short: "Event log"}
	var projectID string
	var limit int
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				events, err := r.ListEvents(ctx, repo.EventFilters{ProjectID: projectID, Limit: limit})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Entity", "Actor"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.TS, e.Type, e.EntityKind + "/" + e.EntityID, e.ActorID})
				}
				tw.Render()
				return nil
			})
		},
	}
	tail.Flags().StringVar(&projectID, "project-id", "", "project filter")
	tail.Flags().IntVar(&limit, "limit", 20, "max rows")
	lg.AddCommand(tail)
	return lg
}

func userCmd() *cobra.Command {
	usr := &cobra.Command{Use: "user", Short: "Manage users"}
	usr.AddCommand(userCreateCmd())
	usr.AddCommand(userListCmd())
	usr.AddCommand(userShowCmd())
	usr.AddCommand(userUpdateCmd())
	return usr
}

func userCreateCmd() *cobra.Command {
	var id, name, email, rules, expertise string
	var score, availability float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				u, err := e.CreateUser(ctx, engine.UserCreateOptions{
					ID:              id,
					Name:            name,
					Email:           email,
					Score:           score,
					Availability:    availability,
					AssignmentRules: rules,
					Expertise:       expertise,
					ActorID:         viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "user id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().Float64Var(&score, "score", 0, "productivity score")
	cmd.Flags().Float64Var(&availability, "availability", 0, "availability 0-1")
	cmd.Flags().StringVar(&rules, "rules", "", "assignment rules JSON list")
	cmd.Flags().StringVar(&expertise, "expertise", "", "expertise summary")
	return cmd
}

func userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				users, err := r.ListUsers(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Score", "Availability", "Active Tasks"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Name, u.Score, u.Availability, u.CurrentTasks})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				u, err := r.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
}

func userUpdateCmd() *cobra.Command {
	var name, email, rules, expertise string
	var score, availability float64
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				var upd repo.UserUpdate
				if cmd.Flags().Changed("name") {
					upd.Name = &name
				}
				if cmd.Flags().Changed("email") {
					upd.Email = &email
				}
				if cmd.Flags().Changed("score") {
					upd.Score = &score
				}
				if cmd.Flags().Changed("availability") {
					upd.Availability = &availability
				}
				if cmd.Flags().Changed("rules") {
					upd.AssignmentRules = &rules
				}
				if cmd.Flags().Changed("expertise") {
					upd.Expertise = &expertise
				}
				if err := r.UpdateUser(ctx, args[0], upd); err != nil {
					return err
				}
				u, err := r.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().Float64Var(&score, "score", 0, "productivity score")
	cmd.Flags().Float64Var(&availability, "availability", 0, "availability 0-1")
	cmd.Flags().StringVar(&rules, "rules", "", "assignment rules JSON list")
	cmd.Flags().StringVar(&expertise, "expertise", "", "expertise summary")
	return cmd
}

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	return prj
}

func projectCreateCmd() *cobra.Command {
	var id, name, desc string
	var factor float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.CreateProject(ctx, engine.ProjectCreateOptions{
					ID:             id,
					Name:           name,
					Description:    desc,
					WorkloadFactor: factor,
					ActorID:        viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "project id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().Float64Var(&factor, "workload-factor", 0, "relative difficulty multiplier")
	return cmd
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				projects, err := r.ListProjects(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Factor"})
				for _, p := range projects {
					tw.AppendRow(table.Row{p.ID, p.Name, p.WorkloadFactor})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				p, err := r.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
}

func teamCmd() *cobra.Command {
	tm := &cobra.Command{Use: "team", Short: "Manage teams"}
	tm.AddCommand(teamCreateCmd())
	tm.AddCommand(teamListCmd())
	tm.AddCommand(teamAddMemberCmd())
	tm.AddCommand(teamRemoveMemberCmd())
	return tm
}

func teamCreateCmd() *cobra.Command {
	var projectID, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create team",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectID == "" || name == "" {
				return fmt.Errorf("--project-id and --name required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CreateTeam(ctx, projectID, name, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "owning project")
	cmd.Flags().StringVar(&name, "name", "", "team name")
	return cmd
}

func teamListCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectID == "" {
				return fmt.Errorf("--project-id required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				teams, err := r.ListTeams(ctx, projectID)
				if err != nil {
					return err
				}
				return printJSON(teams)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "owning project")
	return cmd
}

func teamAddMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <team-id> <user-id>",
		Short: "Add user to team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.AddTeamMember(ctx, args[0], args[1], viper.GetString("actor-id"))
			})
		},
	}
}

func teamRemoveMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member <team-id> <user-id>",
		Short: "Remove user from team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.RemoveTeamMember(ctx, args[0], args[1], viper.GetString("actor-id"))
			})
		},
	}
}

func taskCmd() *cobra.Command {
	tsk := &cobra.Command{Use: "task", Short: "Manage tasks"}
	tsk.AddCommand(taskCreateCmd())
	tsk.AddCommand(taskListCmd())
	tsk.AddCommand(taskShowCmd())
	tsk.AddCommand(taskAssignCmd())
	tsk.AddCommand(taskSuggestCmd())
	tsk.AddCommand(taskCommentCmd())
	tsk.AddCommand(taskDeleteCmd())
	return tsk
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteTask(ctx, args[0])
			})
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var projectID, title, desc, dueDate, assignee, skills string
	var weight float64
	var typeID, statusID int64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.TaskCreateOptions{
					ProjectID:      projectID,
					Title:          title,
					Description:    desc,
					StatusID:       statusID,
					WorkloadWeight: weight,
					DueDate:        dueDate,
					AssigneeID:     assignee,
					RequiredSkills: skills,
					ActorID:        viper.GetString("actor-id"),
				}
				if projectID == "" {
					opts.ProjectID = e.Config.Project.ID
				}
				if cmd.Flags().Changed("type-id") {
					opts.TypeID = &typeID
				}
				t, err := e.CreateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "owning project (defaults to config)")
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().Int64Var(&statusID, "status-id", 0, "initial status id")
	cmd.Flags().Int64Var(&typeID, "type-id", 0, "task type id")
	cmd.Flags().Float64Var(&weight, "weight", 0, "workload weight")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date (RFC3339)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee user id")
	cmd.Flags().StringVar(&skills, "skills", "", "required skills, comma separated")
	return cmd
}

func taskListCmd() *cobra.Command {
	var f repo.TaskFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				tasks, err := r.ListTasks(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Weight", "Assignee", "Suggested"})
				for _, t := range tasks {
					assignee := ""
					if t.AssigneeID != nil {
						assignee = *t.AssigneeID
					}
					suggested := ""
					if t.SuggestedAssigneeID != nil {
						suggested = *t.SuggestedAssigneeID
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.StatusID, t.WorkloadWeight, assignee, suggested})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.ProjectID, "project-id", "", "project filter")
	cmd.Flags().Int64Var(&f.StatusID, "status-id", 0, "status filter")
	cmd.Flags().StringVar(&f.AssigneeID, "assignee", "", "assignee filter")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "max rows")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				t, err := r.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
}

func taskAssignCmd() *cobra.Command {
	var assignee string
	var clear bool
	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign or unassign a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignee == "" && !clear {
				return fmt.Errorf("--to or --clear required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.TaskUpdateOptions{
					ID:             args[0],
					AssignProvided: true,
					ActorID:        viper.GetString("actor-id"),
				}
				if !clear {
					opts.Assign = &assignee
				}
				t, err := e.UpdateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	cmd.Flags().StringVar(&assignee, "to", "", "assignee user id")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove current assignee")
	return cmd
}

func taskSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <task-id>",
		Short: "Suggest the best assignee for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.SuggestAssignee(ctx, args[0], viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if !res.Found {
					fmt.Println(res.Message)
					return nil
				}
				fmt.Printf("Suggested: %s (%s), score %.2f\n", res.Name, res.CandidateID, *res.Score)
				return nil
			})
		},
	}
}

func taskCommentCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "comment <task-id>",
		Short: "Comment on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if body == "" {
				return fmt.Errorf("--message required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := e.AddComment(ctx, args[0], viper.GetString("actor-id"), body)
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
	cmd.Flags().StringVarP(&body, "message", "m", "", "comment body")
	return cmd
}

func notificationCmd() *cobra.Command {
	nt := &cobra.Command{Use: "notification", Short: "Manage notifications"}
	var unreadOnly bool
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications for the acting user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				notes, err := r.ListNotifications(ctx, repo.NotificationFilters{
					UserID:     viper.GetString("actor-id"),
					UnreadOnly: unreadOnly,
					Limit:      limit,
				})
				if err != nil {
					return err
				}
				return printJSON(notes)
			})
		},
	}
	list.Flags().BoolVar(&unreadOnly, "unread", false, "only unread")
	list.Flags().IntVar(&limit, "limit", 0, "max rows")
	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.MarkNotificationRead(ctx, args[0])
			})
		},
	}
	nt.AddCommand(list)
	nt.AddCommand(read)
	return nt
}

func reportCmd() *cobra.Command {
	rep := &cobra.Command{Use: "report", Short: "Reports"}
	rep.AddCommand(&cobra.Command{
		Use:   "workload",
		Short: "Global workload summary per user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entries, err := e.ComputeGlobalWorkloadSummary(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"User", "Score", "Pending", "Done", "Projects", "Workload", "Index", "Assessment"})
				for _, en := range entries {
					tw.AppendRow(table.Row{
						en.Name, en.UserScore, en.GlobalTasksCount, en.TotalTasksDone,
						en.TotalProjectsInvolved, en.GlobalWorkload, en.WorkloadBalanceIndex, en.WorkloadAssessment,
					})
				}
				tw.Render()
				return nil
			})
		},
	})
	return rep
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var allowLegacyHeader bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := app.ResolveConfig(workspace, viper.GetString("project"))
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			authCfg := server.AuthConfig{
				JWTSecret:             os.Getenv("TEAMLINE_JWT_SECRET"),
				AllowLegacyUserHeader: allowLegacyHeader,
			}
			if authCfg.JWTSecret == "" && !allowLegacyHeader {
				return fmt.Errorf("TEAMLINE_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Teamline API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&allowLegacyHeader, "allow-legacy-user-header", false, "accept X-User-Id without auth (dev only)")
	return cmd
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := app.ResolveConfig(workspace, viper.GetString("project"))
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
