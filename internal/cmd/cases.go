package cmd

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/util"
	"github.com/spf13/cobra"
)

func newCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List, create and inspect legal cases",
	}
	cmd.AddCommand(newCasesListCmd(), newCasesCreateCmd(), newCasesShowCmd())
	return cmd
}

func newCasesListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the organization's cases, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && status != api.StatusActive && status != api.StatusClosed {
				return fmt.Errorf("invalid status %q: use %s or %s", status, api.StatusActive, api.StatusClosed)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			cases, err := a.client.ListCases(cmd.Context())
			if err != nil {
				return backendError("failed to list cases", err)
			}
			if status != "" {
				cases = slices.DeleteFunc(cases, func(c api.Case) bool { return c.Status != status })
			}

			out := cmd.OutOrStdout()
			if len(cases) == 0 {
				fmt.Fprintln(out, "No cases")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCLIENT\tTYPE\tPRIORITY\tSTATUS\tCREATED")
			for _, c := range cases {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, util.TruncateANSI(c.Title, 40), c.ClientName, c.CaseType, c.Priority, c.Status, c.CreatedAt.DateString())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only cases with this status (activo, cerrado)")
	return cmd
}

func newCasesCreateCmd() *cobra.Command {
	var nc api.NewCase

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a case",
		Long: `Create a case. Title, client, type and description are required.
Values are sent exactly as given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateNewCase(nc); err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			created, err := a.client.CreateCase(cmd.Context(), nc)
			if err != nil {
				return backendError("failed to create case", err)
			}
			a.logger.Info("case created", "case_id", created.CaseID)
			fmt.Fprintf(cmd.OutOrStdout(), "Created case %s\n", created.CaseID)
			if created.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), created.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&nc.Title, "title", "t", "", "case title")
	cmd.Flags().StringVar(&nc.ClientName, "client", "", "client name")
	cmd.Flags().StringVar(&nc.CaseType, "type", "", "case type (civil, penal, laboral, mercantil, familia, administrativo)")
	cmd.Flags().StringVarP(&nc.Description, "description", "d", "", "case description")
	cmd.Flags().StringVarP(&nc.Priority, "priority", "p", api.PriorityMedium, "priority (baja, media, alta)")
	return cmd
}

// validateNewCase checks the same required fields as the new case form.
func validateNewCase(nc api.NewCase) error {
	var missing []string
	for _, f := range []struct{ label, value string }{
		{"Título", nc.Title},
		{"Cliente", nc.ClientName},
		{"Tipo de Caso", nc.CaseType},
		{"Descripción", nc.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return errors.NewValidationError("case", "Campos obligatorios: "+strings.Join(missing, ", "))
	}
	if !slices.Contains([]string{api.PriorityLow, api.PriorityMedium, api.PriorityHigh}, nc.Priority) {
		return errors.NewValidationError("priority", fmt.Sprintf("prioridad desconocida: %q", nc.Priority))
	}
	return nil
}

func newCasesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			c, err := a.client.GetCase(cmd.Context(), args[0])
			if errors.Is(err, errors.ErrNotFound) {
				return fmt.Errorf("case %s not found", args[0])
			}
			if err != nil {
				return backendError("failed to load case", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", c.Title)
			fmt.Fprintf(out, "ID:       %s\n", c.ID)
			fmt.Fprintf(out, "Client:   %s\n", c.ClientName)
			fmt.Fprintf(out, "Type:     %s\n", c.CaseType)
			fmt.Fprintf(out, "Priority: %s\n", c.Priority)
			fmt.Fprintf(out, "Status:   %s\n", c.Status)
			if d := c.CreatedAt.DateString(); d != "" {
				fmt.Fprintf(out, "Created:  %s\n", d)
			}
			if d := c.UpdatedAt.DateString(); d != "" {
				fmt.Fprintf(out, "Updated:  %s\n", d)
			}
			fmt.Fprintf(out, "\n%s\n", c.Description)
			return nil
		},
	}
}
