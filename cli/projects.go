package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logdeck/api"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd)
		},
	}

	cmd.AddCommand(
		newProjectsListCmd(),
		newProjectsCreateCmd(),
		newProjectsUpdateCmd(),
		newProjectsDeleteCmd(),
	)

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd)
		},
	}
}

func runProjectsList(cmd *cobra.Command) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	projects, err := env.Resources.Projects(ctx)
	if err != nil {
		return surfaceError(err)
	}

	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects yet; create one with `logdeck projects create`")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE\tLOGS\tCREATED")
	for _, p := range projects {
		count := p.LogCount
		if count == 0 {
			count = p.EventLogCount + p.LlmLogCount
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%d\t%s\n",
			p.ID, p.Name, p.ProjectType, p.IsActive, count, p.CreatedAt)
	}
	return w.Flush()
}

func newProjectsCreateCmd() *cobra.Command {
	var name, description, projectType string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long:  "Create a project. Activity projects collect event logs; llm projects collect LLM interaction logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			if name == "" {
				name = prompt(cmd, "Project name: ")
			}
			if projectType != api.ProjectTypeActivity && projectType != api.ProjectTypeLLM {
				return fmt.Errorf("invalid --type %q (want %q or %q)",
					projectType, api.ProjectTypeActivity, api.ProjectTypeLLM)
			}

			project, err := env.Resources.CreateProject(ctx, api.CreateProjectRequest{
				Name:        name,
				Description: description,
				ProjectType: projectType,
			})
			if err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (id %d)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().StringVarP(&projectType, "type", "t", api.ProjectTypeActivity, "Project type: activity or llm")

	return cmd
}

func newProjectsUpdateCmd() *cobra.Command {
	var name, description string
	var activate, deactivate bool

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project's name, description or active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			if activate && deactivate {
				return fmt.Errorf("--activate and --deactivate are mutually exclusive")
			}

			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			req := api.UpdateProjectRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if activate {
				v := true
				req.IsActive = &v
			}
			if deactivate {
				v := false
				req.IsActive = &v
			}

			project, err := env.Resources.UpdateProject(ctx, id, req)
			if err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %q (id %d)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New project name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New project description")
	cmd.Flags().BoolVar(&activate, "activate", false, "Mark the project active")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Mark the project inactive")

	return cmd
}

func newProjectsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all its logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			env, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			if !confirmAction(cmd, yes, fmt.Sprintf("Delete project %d and all of its logs?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			if err := env.Resources.DeleteProject(ctx, id); err != nil {
				return surfaceError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
