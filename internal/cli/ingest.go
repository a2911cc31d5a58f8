package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/personakit/memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest [persona]",
		Short: "Extract and store memories from one chat turn",
		Long:  "Feeds one user/assistant exchange through extraction, classification, dedup, and storage.",
		Args:  cobra.ExactArgs(1),
		Run:   runIngest,
	}

	cmd.Flags().StringP("user", "u", "", "User message")
	cmd.Flags().StringP("assistant", "a", "", "Assistant message")
	cmd.Flags().String("chat", "", "Chat id the turn belongs to")
	cmd.Flags().String("message-id", "", "Message id (generated when empty)")
	cmd.Flags().Bool("incognito", false, "Suppress all persistence for this turn")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	assistant, _ := cmd.Flags().GetString("assistant")
	chatID, _ := cmd.Flags().GetString("chat")
	messageID, _ := cmd.Flags().GetString("message-id")
	incognito, _ := cmd.Flags().GetBool("incognito")

	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	res, err := e.Ingest(cmd.Context(), args[0], model.ChatTurn{
		ID:               messageID,
		ChatID:           chatID,
		UserMessage:      user,
		AssistantMessage: assistant,
		Timestamp:        time.Now().UTC(),
	}, incognito)
	if err != nil {
		exitErr("ingest", err)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
