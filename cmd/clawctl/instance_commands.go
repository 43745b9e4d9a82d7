package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclusterclaw/clawctl/instances"
)

func (c *console) newInstanceCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "instance",
		Short:             "Manage Claw instances",
		PersistentPreRunE: c.requireSession,
	}

	var filter instances.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.instances.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printInstanceTable(result.Instances)
			fmt.Printf("\n%d total\n", result.Total)
			return nil
		},
	}
	list.Flags().StringVar(&filter.TenantID, "tenant", "", "Filter by tenant ID")
	list.Flags().StringVar(&filter.ProjectID, "project", "", "Filter by project ID")
	list.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	list.Flags().IntVar(&filter.PageSize, "page-size", 0, "Page size")
	root.AddCommand(list)

	root.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := c.instances.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(instance)
		},
	})

	var createReq instances.CreateRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := c.instances.Create(cmd.Context(), createReq)
			if err != nil {
				return err
			}
			return c.printJSON(instance)
		},
	}
	create.Flags().StringVar(&createReq.Name, "name", "", "Instance name")
	create.Flags().StringVar(&createReq.TenantID, "tenant", "", "Tenant ID")
	create.Flags().StringVar(&createReq.ProjectID, "project", "", "Project ID")
	create.Flags().StringVar(&createReq.Type, "type", "", "Instance type")
	create.Flags().StringVar(&createReq.Version, "version", "", "Instance version")
	create.Flags().StringVar(&createReq.CPU, "cpu", "", "CPU request")
	create.Flags().StringVar(&createReq.Memory, "memory", "", "Memory request")
	for _, required := range []string{"name", "tenant", "project", "type", "version"} {
		_ = create.MarkFlagRequired(required)
	}
	root.AddCommand(create)

	var updateReq instances.UpdateRequest
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := c.instances.Update(cmd.Context(), args[0], updateReq)
			if err != nil {
				return err
			}
			return c.printJSON(instance)
		},
	}
	update.Flags().StringVar(&updateReq.Name, "name", "", "New name")
	update.Flags().StringVar(&updateReq.CPU, "cpu", "", "New CPU request")
	update.Flags().StringVar(&updateReq.Memory, "memory", "", "New memory request")
	root.AddCommand(update)

	for _, verb := range []struct {
		name string
		run  func(cmd *cobra.Command, id string) error
	}{
		{"start", func(cmd *cobra.Command, id string) error { return c.instances.Start(cmd.Context(), id) }},
		{"stop", func(cmd *cobra.Command, id string) error { return c.instances.Stop(cmd.Context(), id) }},
		{"restart", func(cmd *cobra.Command, id string) error { return c.instances.Restart(cmd.Context(), id) }},
		{"delete", func(cmd *cobra.Command, id string) error { return c.instances.Delete(cmd.Context(), id) }},
	} {
		verb := verb
		root.AddCommand(&cobra.Command{
			Use:   verb.name + " <id>",
			Short: verb.name + " an instance",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := verb.run(cmd, args[0]); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			},
		})
	}

	var tailLines int
	logs := &cobra.Command{
		Use:   "logs <id>",
		Short: "Show recent instance logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.instances.GetLogs(cmd.Context(), args[0], tailLines)
			if err != nil {
				return err
			}
			fmt.Print(result.Logs)
			return nil
		},
	}
	logs.Flags().IntVar(&tailLines, "tail", 100, "Number of trailing lines")
	root.AddCommand(logs)

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll and re-render the instance list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = c.cfg.GetWatchInterval()
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				result, err := c.instances.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				fmt.Printf("\033[H\033[2J%s\n", time.Now().Format(time.RFC3339))
				printInstanceTable(result.Instances)

				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default from config)")
	watch.Flags().StringVar(&filter.TenantID, "tenant", "", "Filter by tenant ID")
	watch.Flags().StringVar(&filter.ProjectID, "project", "", "Filter by project ID")
	root.AddCommand(watch)

	return root
}

func printInstanceTable(list []instances.Instance) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTENANT\tPROJECT\tTYPE\tVERSION\tSTATUS")
	for _, instance := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			instance.ID, instance.Name, instance.TenantID, instance.ProjectID,
			instance.Type, instance.Version, instance.Status)
	}
	_ = w.Flush()
}
