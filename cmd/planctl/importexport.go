package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/session"
)

// readInput reads the whole payload from a file, or stdin when no file is given.
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	var name string
	var activate bool
	var file string
	var out string

	importPlanCmd := &cobra.Command{
		Use:   "import-plan",
		Short: "Import a full plan payload (assistant output is fine) and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(file)
			if err != nil {
				return err
			}
			c := newClient()

			// Start from the server-side library so the merge keeps
			// existing recipes on id collisions.
			library, err := fetchLibrary(c)
			if err != nil {
				return err
			}
			s := session.New()
			s.Library = library
			if err := s.ImportPlan(text); err != nil {
				return err
			}
			if err := savePlan(c, name, s.Document(), activate); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "plan %q saved (%d recipes)\n", name, len(s.Library))
			return nil
		},
	}
	importPlanCmd.Flags().StringVarP(&name, "name", "n", "", "Plan name (required)")
	importPlanCmd.Flags().BoolVar(&activate, "activate", false, "Make the imported plan active")
	importPlanCmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (defaults to stdin)")
	_ = importPlanCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(importPlanCmd)

	var recipesFile string
	importRecipesCmd := &cobra.Command{
		Use:   "import-recipes",
		Short: "Import a recipe batch into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(recipesFile)
			if err != nil {
				return err
			}
			c := newClient()
			library, err := fetchLibrary(c)
			if err != nil {
				return err
			}
			s := session.New()
			s.Library = library
			n, err := s.ImportRecipes(text)
			if err != nil {
				return err
			}
			for i := range s.Library {
				rec := s.Library[i]
				resp, err := c.R().SetBody(&rec).Put("/api/recipes/" + rec.RecipeID)
				if err != nil {
					return err
				}
				if err := checkStatus(resp); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(os.Stdout, "%d recipes imported\n", n)
			return nil
		},
	}
	importRecipesCmd.Flags().StringVarP(&recipesFile, "file", "f", "", "Payload file (defaults to stdin)")
	rootCmd.AddCommand(importRecipesCmd)

	exportPlanCmd := &cobra.Command{
		Use:   "export-plan [PLAN_ID]",
		Short: "Export a plan (the active one by default) as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			var plan *model.Plan
			if len(args) == 1 {
				p, err := fetchPlan(c, args[0])
				if err != nil {
					return err
				}
				plan = p
			} else {
				var p planDocResponse
				resp, err := c.R().SetResult(&p).Get("/api/plans/active")
				if err != nil {
					return err
				}
				if err := checkStatus(resp); err != nil {
					return err
				}
				if resp.StatusCode() == 204 {
					return fmt.Errorf("no active plan to export")
				}
				plan = p.toPlan()
			}
			data, err := session.Load(plan).ExportPlan()
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}
	exportPlanCmd.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(exportPlanCmd)

	var libOut string
	exportLibraryCmd := &cobra.Command{
		Use:   "export-library",
		Short: "Export the recipe catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			library, err := fetchLibrary(c)
			if err != nil {
				return err
			}
			s := session.New()
			s.Library = library
			data, err := s.ExportLibrary()
			if err != nil {
				return err
			}
			return writeOutput(libOut, data)
		},
	}
	exportLibraryCmd.Flags().StringVarP(&libOut, "out", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(exportLibraryCmd)
}
