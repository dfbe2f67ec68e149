package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	plansCmd := &cobra.Command{Use: "plans", Short: "Plan operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/plans")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	plansCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get PLAN_ID",
		Short: "Get a full plan by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/plans/" + args[0])
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	plansCmd.AddCommand(getCmd)

	activeCmd := &cobra.Command{
		Use:   "active",
		Short: "Show the currently active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/plans/active")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			if resp.StatusCode() == 204 {
				_, _ = fmt.Fprintln(os.Stdout, "no active plan")
				return nil
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	plansCmd.AddCommand(activeCmd)

	activateCmd := &cobra.Command{
		Use:   "activate PLAN_ID",
		Short: "Make a saved plan the active one",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			plan, err := fetchPlan(c, args[0])
			if err != nil {
				return err
			}
			if err := savePlan(c, plan.Name, &plan.Document, true); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "plan %q is now active\n", plan.Name)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
	plansCmd.AddCommand(activateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete PLAN_ID",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/plans/" + args[0])
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	plansCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(plansCmd)
}
