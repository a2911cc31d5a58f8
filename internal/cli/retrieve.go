package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve [persona] [query]",
		Short: "Retrieve ranked memories for a query",
		Long:  "Runs hybrid lexical+vector retrieval and prints the blended ranking.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runRetrieve,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default: config max_hits)")

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args[1:], " ")

	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	hits, err := e.Retrieve(cmd.Context(), args[0], query, limit)
	if err != nil {
		exitErr("retrieve", err)
	}

	if len(hits) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(hits, "", "  ")
	fmt.Println(string(b))
}
