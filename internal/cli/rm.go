package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/personakit/memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [persona] [id]",
		Short: "Delete one memory",
		Long:  "Removes the memory row together with its vector and lexical index entries.",
		Args:  cobra.ExactArgs(2),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	if err := e.DeleteMemory(cmd.Context(), args[0], args[1]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			exitErr("rm", fmt.Errorf("no memory %s for persona %s", args[1], args[0]))
		}
		exitErr("rm", err)
	}
	fmt.Printf("deleted %s\n", args[1])
}
