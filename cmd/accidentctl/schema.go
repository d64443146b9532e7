package main

import (
	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/spf13/cobra"
)

type schemaOutput struct {
	Report     dataset.LoadReport   `json:"report"`
	Schema     domain.Schema        `json:"schema"`
	Unresolved []domain.Role        `json:"unresolved"`
	Options    domain.FilterOptions `json:"options"`
}

func newSchemaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>",
		Short: "Show which column serves each role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, schema, report, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			unresolved := schema.Unresolved()
			if unresolved == nil {
				unresolved = []domain.Role{}
			}
			return c.writeJSON(schemaOutput{
				Report:     report,
				Schema:     schema,
				Unresolved: unresolved,
				Options:    domain.Options(table, schema),
			})
		},
	}
}
