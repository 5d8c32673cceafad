package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room membership commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomTeamCmd())
	cmd.AddCommand(newRoomStateCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var (
		name, roomName, ruleset, teamMode, password string
		maxPlayers                                  int
		opts                                        roomOptions
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and join it as host",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"display_name": name,
				"name":         roomName,
				"ruleset":      ruleset,
				"team_mode":    teamMode,
				"max_players":  maxPlayers,
				"password":     password,
				"options":      opts.request(),
			}
			var result JoinResult

			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			return saveAndPrint(cmd, result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name (required)")
	cmd.Flags().StringVar(&roomName, "room-name", "", "Room name (default: \"<name>'s room\")")
	cmd.Flags().StringVar(&ruleset, "ruleset", "x01", "Ruleset: x01, cricket")
	cmd.Flags().StringVar(&teamMode, "team-mode", "singles", "Team mode: singles, doubles")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Maximum players (default: team mode capacity)")
	cmd.Flags().StringVar(&password, "password", "", "Room password")
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// roomOptions are the ruleset flags of room create. Zero values leave the
// server default in place.
type roomOptions struct {
	startingScore int
	inMode        string
	outMode       string
	legs          int
	sets          int
	format        string
	starter       string
}

func (o *roomOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.startingScore, "start", 0, "X01 starting score (default 501)")
	cmd.Flags().StringVar(&o.inMode, "in", "", "X01 in mode: single, double, master")
	cmd.Flags().StringVar(&o.outMode, "out", "", "X01 out mode: single, double, master")
	cmd.Flags().IntVar(&o.legs, "legs", 0, "Legs per set")
	cmd.Flags().IntVar(&o.sets, "sets", 0, "Sets per match")
	cmd.Flags().StringVar(&o.format, "format", "", "Match format: first_to, best_of")
	cmd.Flags().StringVar(&o.starter, "starter", "", "Who starts: host, opponent, bulloff")
}

func (o *roomOptions) request() map[string]any {
	return map[string]any{
		"starting_score": o.startingScore,
		"in_mode":        o.inMode,
		"out_mode":       o.outMode,
		"legs":           o.legs,
		"sets":           o.sets,
		"format":         o.format,
		"starter":        o.starter,
	}
}

func newRoomJoinCmd() *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room, or reconnect to it under the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{"display_name": name, "password": password}
			var result JoinResult

			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/rooms/%s/join", code), req, &result); err != nil {
				return err
			}

			return saveAndPrint(cmd, result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Room password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func saveAndPrint(cmd *cobra.Command, result JoinResult) error {
	if err := cfg.SaveToken(result.RoomID, result.Player.ID, result.SessionToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	out.Print(result)
	return nil
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/leave")
			if err != nil {
				return err
			}

			if err := client.Post(cmd.Context(), path, nil, nil); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Left room %s", cfg.RoomID))
			return nil
		},
	}
}

func newRoomTeamCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "team <A|B>",
		Short: "Choose a doubles team (the host may move others with --player)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/team")
			if err != nil {
				return err
			}

			req := map[string]string{"team": args[0], "player_id": playerID}
			return postAndPrintState(cmd, path, req)
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player to move (default: yourself)")

	return cmd
}

func newRoomStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current room state",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.roomPath("/state")
			if err != nil {
				return err
			}

			var result RoomState
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// postAndPrintState posts to a room route that answers with the new state
func postAndPrintState(cmd *cobra.Command, path string, body any) error {
	if client.Token() == "" {
		return errors.New("not in a room: create or join one first")
	}

	var result RoomState
	if err := client.Post(cmd.Context(), path, body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	out.Print(result)
	return nil
}
