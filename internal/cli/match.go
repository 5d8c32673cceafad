package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match lifecycle commands",
	}

	cmd.AddCommand(newMatchStartCmd())
	cmd.AddCommand(newMatchBullOffCmd())
	cmd.AddCommand(newMatchRematchCmd())

	return cmd
}

func newMatchStartCmd() *cobra.Command {
	var starter string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a match in the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/start")
			if err != nil {
				return err
			}

			req := map[string]string{}
			if starter != "" {
				req["starting_player_id"] = starter
			}
			return postAndPrintState(cmd, path, req)
		},
	}

	cmd.Flags().StringVar(&starter, "starter", "", "Player ID to throw first (default: room policy)")

	return cmd
}

func newMatchBullOffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bulloff <winner-id>",
		Short: "Record the bull-off winner (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/bulloff")
			if err != nil {
				return err
			}
			return postAndPrintState(cmd, path, map[string]string{"winner_id": args[0]})
		},
	}
}

func newMatchRematchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rematch",
		Short: "Reset the room for another match",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/rematch")
			if err != nil {
				return err
			}
			return postAndPrintState(cmd, path, nil)
		},
	}
}

func newThrowCmd() *cobra.Command {
	var number, multiplier int

	cmd := &cobra.Command{
		Use:   "throw [points]",
		Short: "Report a throw",
		Long: `Report a throw in the current match.

X01 rooms take the total of the three-dart visit:
  dartsctl throw 100

Cricket rooms take one dart at a time:
  dartsctl throw --number 20 --multiplier 3
  dartsctl throw --number 0          (a miss)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/throw")
			if err != nil {
				return err
			}

			req := map[string]int{}
			switch {
			case len(args) == 1:
				points, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid points %q", args[0])
				}
				req["points"] = points
			case cmd.Flags().Changed("number"):
				req["number"] = number
				req["multiplier"] = multiplier
			default:
				return fmt.Errorf("give the visit points or --number")
			}
			return postAndPrintState(cmd, path, req)
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "Cricket target (15-20, 25 for bull, 0 for a miss)")
	cmd.Flags().IntVar(&multiplier, "multiplier", 1, "Cricket multiplier (1-3)")

	return cmd
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <darts>",
		Short: "Confirm a checkout with the darts used (0 if the leg was not won)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/checkout")
			if err != nil {
				return err
			}
			darts, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid darts %q", args[0])
			}
			return postAndPrintState(cmd, path, map[string]int{"darts": darts})
		},
	}
}

func newAttemptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attempts <darts>",
		Short: "Answer how many darts were thrown at a double",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/double-attempts")
			if err != nil {
				return err
			}
			attempts, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid attempts %q", args[0])
			}
			return postAndPrintState(cmd, path, map[string]int{"attempts": attempts})
		},
	}
}
