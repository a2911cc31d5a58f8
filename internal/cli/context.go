package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [persona] [message]",
		Short: "Build the context bundle for an outgoing message",
		Long:  "Assembles recent turns plus relevant long-term memories, within the configured budget.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runContext,
	}

	cmd.Flags().String("chat", "", "Chat id for the short-term window")
	cmd.Flags().IntP("window", "w", 0, "Short-term turns to include (default: config short_term_window)")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetString("chat")
	window, _ := cmd.Flags().GetInt("window")
	message := strings.Join(args[1:], " ")

	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	bundle, err := e.BuildContext(cmd.Context(), args[0], chatID, message, window)
	if err != nil {
		exitErr("context", err)
	}

	b, _ := json.MarshalIndent(bundle, "", "  ")
	fmt.Println(string(b))
}
