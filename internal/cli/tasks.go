package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/tasks"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksRemoveCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		priority  string
		completed bool
		search    string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.signIn(cmd.Context()); err != nil {
				return err
			}

			filter := tasks.Filter{Search: search, Tags: tags}
			if priority != "" {
				p := model.Priority(strings.ToLower(priority))
				filter.Priority = &p
			}
			if cmd.Flags().Changed("completed") {
				filter.IsCompleted = &completed
			}

			list, err := app.Tasks.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tDONE\tPOMODOROS\tTITLE\tTAGS")
			for _, t := range list {
				done := " "
				if t.IsCompleted {
					done = "x"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
					t.ID, t.Priority, done, t.CompletedPomodoros, t.EstimatedPomodoros, t.Title, strings.Join(t.Tags, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority (high, medium, low)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed tasks, or open ones with --completed=false")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title or description, case-insensitive")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Only tasks carrying one of these tags")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var (
		priority    string
		description string
		estimate    int
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.signIn(cmd.Context()); err != nil {
				return err
			}

			input := model.NewTask{
				Title:              strings.Join(args, " "),
				Priority:           model.Priority(strings.ToLower(priority)),
				Tags:               tags,
				EstimatedPomodoros: estimate,
			}
			if description != "" {
				input.Description = &description
			}

			task, err := app.Tasks.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high, medium or low (default medium)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Longer description")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "Estimated pomodoros (default 1)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tags, repeatable or comma separated")
	return cmd
}

func newTasksDoneCmd(app *App) *cobra.Command {
	var reopen bool

	cmd := &cobra.Command{
		Use:   "done TASK_ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.signIn(cmd.Context()); err != nil {
				return err
			}

			completed := !reopen
			task, err := app.Tasks.Update(cmd.Context(), args[0], model.TaskPatch{IsCompleted: &completed})
			if err != nil {
				return err
			}
			state := "completed"
			if reopen {
				state = "reopened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %q %s\n", task.Title, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reopen, "reopen", false, "Mark the task open again")
	return cmd
}

func newTasksRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm TASK_ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.signIn(cmd.Context()); err != nil {
				return err
			}
			if err := app.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
