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

type workoutFlags struct {
	name   string
	sets   int
	reps   int
	weight float64
	notes  string
}

func (f *workoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "exercise name")
	cmd.Flags().IntVar(&f.sets, "sets", 0, "number of sets")
	cmd.Flags().IntVar(&f.reps, "reps", 0, "repetitions per set")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "weight")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-text notes")
}

// input returns only the fields set on the command line.
func (f *workoutFlags) input(cmd *cobra.Command) apiclient.WorkoutInput {
	var in apiclient.WorkoutInput
	if cmd.Flags().Changed("name") {
		in.Name = &f.name
	}
	if cmd.Flags().Changed("sets") {
		in.Sets = &f.sets
	}
	if cmd.Flags().Changed("reps") {
		in.Reps = &f.reps
	}
	if cmd.Flags().Changed("weight") {
		in.Weight = &f.weight
	}
	if cmd.Flags().Changed("notes") {
		in.Notes = &f.notes
	}
	return in
}

func newWorkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Manage the workouts inside a split",
	}
	cmd.AddCommand(newWorkoutListCmd())
	cmd.AddCommand(newWorkoutAddCmd())
	cmd.AddCommand(newWorkoutShowCmd())
	cmd.AddCommand(newWorkoutUpdateCmd())
	cmd.AddCommand(newWorkoutDeleteCmd())
	return cmd
}

func newWorkoutListCmd() *cobra.Command {
	var opts apiclient.ListOptions
	cmd := &cobra.Command{
		Use:   "list <split-id>",
		Short: "List the workouts of a split",
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
			workouts, err := cli.ListWorkouts(cmd.Context(), cfg.AccessToken, splitID, opts)
			if err != nil {
				return err
			}
			if len(workouts) == 0 {
				cmd.Println("No workouts found")
				return nil
			}
			printWorkouts(cmd.OutOrStdout(), workouts)
			return nil
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func newWorkoutAddCmd() *cobra.Command {
	var flags workoutFlags
	cmd := &cobra.Command{
		Use:   "add <split-id>",
		Short: "Add a workout to a split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, err := parseID(args[0], "split id")
			if err != nil {
				return err
			}
			if strings.TrimSpace(flags.name) == "" {
				return errors.New("--name is required")
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			w, err := cli.CreateWorkout(cmd.Context(), cfg.AccessToken, splitID, flags.input(cmd))
			if err != nil {
				return err
			}
			cmd.Printf("Added workout %d (%s) to split %d\n", w.ID, w.Name, w.SplitID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWorkoutShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <split-id> <workout-id>",
		Short: "Show one workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, workoutID, err := parseWorkoutArgs(args)
			if err != nil {
				return err
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			w, err := cli.GetWorkout(cmd.Context(), cfg.AccessToken, splitID, workoutID)
			if err != nil {
				return err
			}
			printWorkouts(cmd.OutOrStdout(), []apiclient.Workout{w})
			return nil
		},
	}
}

func newWorkoutUpdateCmd() *cobra.Command {
	var flags workoutFlags
	cmd := &cobra.Command{
		Use:   "update <split-id> <workout-id>",
		Short: "Change the given fields of a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, workoutID, err := parseWorkoutArgs(args)
			if err != nil {
				return err
			}
			input := flags.input(cmd)
			if input == (apiclient.WorkoutInput{}) {
				return errors.New("nothing to update; pass at least one field flag")
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			w, err := cli.UpdateWorkout(cmd.Context(), cfg.AccessToken, splitID, workoutID, input)
			if err != nil {
				return err
			}
			cmd.Printf("Updated workout %d (%s)\n", w.ID, w.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWorkoutDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <split-id> <workout-id>",
		Short: "Delete a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitID, workoutID, err := parseWorkoutArgs(args)
			if err != nil {
				return err
			}
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			if err := cli.DeleteWorkout(cmd.Context(), cfg.AccessToken, splitID, workoutID); err != nil {
				return err
			}
			cmd.Printf("Deleted workout %d\n", workoutID)
			return nil
		},
	}
}

func parseWorkoutArgs(args []string) (int64, int64, error) {
	splitID, err := parseID(args[0], "split id")
	if err != nil {
		return 0, 0, err
	}
	workoutID, err := parseID(args[1], "workout id")
	if err != nil {
		return 0, 0, err
	}
	return splitID, workoutID, nil
}

func printWorkouts(w io.Writer, workouts []apiclient.Workout) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSETS\tREPS\tWEIGHT\tNOTES")
	for _, wk := range workouts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", wk.ID, wk.Name, optInt(wk.Sets), optInt(wk.Reps), optFloat(wk.Weight), optString(wk.Notes))
	}
	tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
