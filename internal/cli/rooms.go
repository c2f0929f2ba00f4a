package cli

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
)

var roomCodePattern = regexp.MustCompile(`^\d{4}$`)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Inspect live rooms",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsGetCmd())
	cmd.AddCommand(newRoomsHistoryCmd())

	return cmd
}

// roomCodeArg accepts exactly one 4-digit room code
func roomCodeArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if !roomCodePattern.MatchString(args[0]) {
		return fmt.Errorf("room code must be 4 digits, got %q", args[0])
	}
	return nil
}

// fetchAndPrint reads one API resource and prints it in the chosen format
func fetchAndPrint[T any](cmd *cobra.Command, path string) error {
	var result T
	if err := client.Get(cmd.Context(), path, &result); err != nil {
		return err
	}
	NewOutput(cfg.Output).Print(result)
	return nil
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchAndPrint[RoomList](cmd, "/api/v1/rooms")
		},
	}
}

func newRoomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room's phase, roster and scores",
		Args:  roomCodeArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchAndPrint[Room](cmd, "/api/v1/rooms/"+args[0])
		},
	}
}

func newRoomsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <code>",
		Short: "Show the finished rounds of a room",
		Args:  roomCodeArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchAndPrint[History](cmd, "/api/v1/rooms/"+args[0]+"/history")
		},
	}
}
