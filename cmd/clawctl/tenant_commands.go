package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclusterclaw/clawctl/projects"
	"github.com/openclusterclaw/clawctl/tenants"
)

func (c *console) newTenantCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "tenant",
		Short:             "Manage tenants",
		PersistentPreRunE: c.requireSession,
	}

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.tenants.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMAX INSTANCES\tMAX CPU\tMAX MEMORY\tMAX STORAGE")
			for _, tenant := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					tenant.ID, tenant.Name, tenant.MaxInstances, tenant.MaxCPU, tenant.MaxMemory, tenant.MaxStorage)
			}
			return w.Flush()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := c.tenants.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(tenant)
		},
	})

	var createReq tenants.CreateRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := c.tenants.Create(cmd.Context(), createReq)
			if err != nil {
				return err
			}
			return c.printJSON(tenant)
		},
	}
	create.Flags().StringVar(&createReq.Name, "name", "", "Tenant name")
	create.Flags().IntVar(&createReq.MaxInstances, "max-instances", 0, "Instance quota")
	create.Flags().StringVar(&createReq.MaxCPU, "max-cpu", "", "CPU quota")
	create.Flags().StringVar(&createReq.MaxMemory, "max-memory", "", "Memory quota")
	create.Flags().StringVar(&createReq.MaxStorage, "max-storage", "", "Storage quota")
	_ = create.MarkFlagRequired("name")
	root.AddCommand(create)

	var updateReq tenants.UpdateRequest
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := c.tenants.Update(cmd.Context(), args[0], updateReq)
			if err != nil {
				return err
			}
			return c.printJSON(tenant)
		},
	}
	update.Flags().StringVar(&updateReq.Name, "name", "", "New name")
	update.Flags().IntVar(&updateReq.MaxInstances, "max-instances", 0, "New instance quota")
	update.Flags().StringVar(&updateReq.MaxCPU, "max-cpu", "", "New CPU quota")
	update.Flags().StringVar(&updateReq.MaxMemory, "max-memory", "", "New memory quota")
	update.Flags().StringVar(&updateReq.MaxStorage, "max-storage", "", "New storage quota")
	root.AddCommand(update)

	root.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.tenants.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	})

	return root
}

func (c *console) newProjectCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "project",
		Short:             "Manage projects",
		PersistentPreRunE: c.requireSession,
	}

	var tenantID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.projects.List(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTENANT\tNAME")
			for _, project := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", project.ID, project.TenantID, project.Name)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&tenantID, "tenant", "", "Filter by tenant ID")
	root.AddCommand(list)

	root.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(project)
		},
	})

	var createReq projects.CreateRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.projects.Create(cmd.Context(), createReq)
			if err != nil {
				return err
			}
			return c.printJSON(project)
		},
	}
	create.Flags().StringVar(&createReq.TenantID, "tenant", "", "Owning tenant ID")
	create.Flags().StringVar(&createReq.Name, "name", "", "Project name")
	_ = create.MarkFlagRequired("tenant")
	_ = create.MarkFlagRequired("name")
	root.AddCommand(create)

	var newName string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := c.projects.Update(cmd.Context(), args[0], projects.UpdateRequest{Name: newName})
			if err != nil {
				return err
			}
			return c.printJSON(project)
		},
	}
	update.Flags().StringVar(&newName, "name", "", "New name")
	_ = update.MarkFlagRequired("name")
	root.AddCommand(update)

	root.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	})

	return root
}
