package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apiclient "github.com/liftsplit/liftsplit/pkg/api/client"
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Manage workout splits",
	}
	cmd.AddCommand(newSplitListCmd())
	cmd.AddCommand(newSplitCreateCmd())
	cmd.AddCommand(newSplitShowCmd())
	cmd.AddCommand(newSplitUpdateCmd())
	cmd.AddCommand(newSplitDeleteCmd())
	return cmd
}

func newSplitListCmd() *cobra.Command {
	var opts apiclient.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your splits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			splits, err := cli.ListSplits(cmd.Context(), cfg.AccessToken, opts)
			if err != nil {
				return err
			}
			if len(splits) == 0 {
				cmd.Println("No splits found")
				return nil
			}
			printSplits(cmd.OutOrStdout(), splits)
			return nil
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func newSplitCreateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a split",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" {
				return errors.New("--name is required")
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			input := apiclient.SplitInput{Name: &name}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			split, err := cli.CreateSplit(cmd.Context(), cfg.AccessToken, input)
			if err != nil {
				return err
			}
			cmd.Printf("Created split %d (%s)\n", split.ID, split.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "split name")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	return cmd
}

func newSplitShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <split-id>",
		Short: "Show a split and its workouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, err := parseID(args[0], "split id")
			if err != nil {
				return err
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			split, err := cli.GetSplit(cmd.Context(), cfg.AccessToken, splitID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d  %s\n", split.ID, split.Name)
			if split.Description != nil && *split.Description != "" {
				fmt.Fprintf(out, "    %s\n", *split.Description)
			}
			if len(split.Workouts) == 0 {
				fmt.Fprintln(out, "No workouts yet")
				return nil
			}
			printWorkouts(out, split.Workouts)
			return nil
		},
	}
}

func newSplitUpdateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <split-id>",
		Short: "Change a split's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, err := parseID(args[0], "split id")
			if err != nil {
				return err
			}
			var input apiclient.SplitInput
			if cmd.Flags().Changed("name") {
				input.Name = &name
			}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			if input.Name == nil && input.Description == nil {
				return errors.New("nothing to update; pass --name or --description")
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			split, err := cli.UpdateSplit(cmd.Context(), cfg.AccessToken, splitID, input)
			if err != nil {
				return err
			}
			cmd.Printf("Updated split %d (%s)\n", split.ID, split.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newSplitDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <split-id>",
		Short: "Delete a split and all of its workouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, err := parseID(args[0], "split id")
			if err != nil {
				return err
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			if err := cli.DeleteSplit(cmd.Context(), cfg.AccessToken, splitID); err != nil {
				return err
			}
			cmd.Printf("Deleted split %d\n", splitID)
			return nil
		},
	}
}

func addListFlags(cmd *cobra.Command, opts *apiclient.ListOptions) {
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of results (0 for all)")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "number of results to skip")
	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive name filter")
}

func parseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, raw)
	}
	return id, nil
}

func printSplits(w io.Writer, splits []apiclient.Split) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED")
	for _, s := range splits {
		desc := ""
		if s.Description != nil {
			desc = *s.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Name, desc, s.CreatedAt.Local().Format("2006-01-02"))
	}
	tw.Flush()
}
