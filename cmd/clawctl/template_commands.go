package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclusterclaw/clawctl/configs"
)

func (c *console) newTemplateCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "template",
		Short:             "Manage configuration templates",
		PersistentPreRunE: c.requireSession,
	}

	var adapterType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.configs.List(cmd.Context(), adapterType)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADAPTER\tVERSION\tVARIABLES")
			for _, template := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					template.ID, template.Name, template.AdapterType, template.Version, len(template.Variables))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&adapterType, "adapter", "", "Filter by adapter type")
	root.AddCommand(list)

	root.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := c.configs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// Secret variable defaults are display-masked.
			for i := range template.Variables {
				if template.Variables[i].Secret {
					template.Variables[i].Default = "******"
				}
			}
			return c.printJSON(template)
		},
	})

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a template from a JSON definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readTemplateFile[configs.CreateRequest](createFile)
			if err != nil {
				return err
			}
			template, err := c.configs.Create(cmd.Context(), *req)
			if err != nil {
				return err
			}
			return c.printJSON(template)
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "Path to the JSON template definition")
	_ = create.MarkFlagRequired("file")
	root.AddCommand(create)

	var updateFile string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a template from a JSON definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readTemplateFile[configs.UpdateRequest](updateFile)
			if err != nil {
				return err
			}
			template, err := c.configs.Update(cmd.Context(), args[0], *req)
			if err != nil {
				return err
			}
			return c.printJSON(template)
		},
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "", "Path to the JSON template definition")
	_ = update.MarkFlagRequired("file")
	root.AddCommand(update)

	root.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.configs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	})

	return root
}

func readTemplateFile[T any](path string) (*T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}
	var req T
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("parse template file: %w", err)
	}
	return &req, nil
}
