package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/document"
	"github.com/lexai-app/lexai/internal/tui/screen"
	"github.com/lexai-app/lexai/internal/util"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Upload a text document for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := screen.ReadDocument(screen.OpenFile, args[0])
			if err != nil {
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

			res, err := a.client.AnalyzeDocument(cmd.Context(), req)
			if err != nil {
				return backendError("failed to analyze "+req.Filename, err)
			}
			printAnalysis(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func printAnalysis(w io.Writer, res *api.Analysis) {
	fmt.Fprintf(w, "Análisis: %s\n\n", res.Filename)
	fmt.Fprintf(w, "Resumen\n  %s\n", res.Summary)

	if len(res.KeyDates) > 0 {
		fmt.Fprintln(w, "\nFechas Importantes")
		for _, d := range res.KeyDates {
			fmt.Fprintf(w, "  %s  %s\n", d.Date, d.Description)
		}
	}
	if len(res.Risks) > 0 {
		fmt.Fprintln(w, "\nRiesgos Identificados")
		for _, r := range res.Risks {
			fmt.Fprintf(w, "  [%s] %s\n", util.Upper(r.Level), r.Description)
		}
	}
	if len(res.Jurisprudence) > 0 {
		fmt.Fprintln(w, "\nJurisprudencia Relevante")
		for _, j := range res.Jurisprudence {
			fmt.Fprintf(w, "  - %s\n", j)
		}
	}
	if len(res.Clauses) > 0 {
		fmt.Fprintln(w, "\nCláusulas Destacadas")
		for _, c := range res.Clauses {
			fmt.Fprintf(w, "  %s: %s\n", util.Upper(c.Type), c.Content)
		}
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		typeID string
		fields document.Fields
		output string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a legal document from a template",
		Long: `Draft a legal document locally. Nothing is sent to the backend.

Use --list to see the document types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, t := range document.Types() {
					fmt.Fprintf(out, "%-24s %s\n", t.ID, t.Name)
				}
				return nil
			}
			if typeID == "" {
				return fmt.Errorf("--type is required (see --list)")
			}

			doc, err := document.Generate(typeID, fields, time.Now())
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(doc.Content), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(out, "Wrote %s to %s\n", doc.Title, output)
				return nil
			}
			fmt.Fprintf(out, "%s\n%s\n\n%s\n", doc.Title, doc.DateString(), doc.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeID, "type", "t", "", "document type id")
	cmd.Flags().StringVar(&fields.ParteA, "parte-a", "", "first party")
	cmd.Flags().StringVar(&fields.ParteB, "parte-b", "", "second party")
	cmd.Flags().StringVar(&fields.Importe, "importe", "", "amount")
	cmd.Flags().StringVar(&fields.Fecha, "fecha", "", "date")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to this file")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list document types")
	return cmd
}
