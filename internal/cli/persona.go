package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	persona := &cobra.Command{
		Use:   "persona",
		Short: "Manage per-persona memory settings",
	}

	persona.AddCommand(&cobra.Command{
		Use:   "enable [persona]",
		Short: "Turn memory on for a persona",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runSetEnabled(cmd, args[0], true) },
	})
	persona.AddCommand(&cobra.Command{
		Use:   "disable [persona]",
		Short: "Turn memory off for a persona",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runSetEnabled(cmd, args[0], false) },
	})
	persona.AddCommand(&cobra.Command{
		Use:   "status [persona]",
		Short: "Show whether memory is enabled for a persona",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonaStatus,
	})

	RootCmd.AddCommand(persona)
}

func runSetEnabled(cmd *cobra.Command, personaID string, enabled bool) {
	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	if err := e.SetEnabled(cmd.Context(), personaID, enabled); err != nil {
		exitErr("set enabled", err)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("memory %s for %s\n", state, personaID)
}

func runPersonaStatus(cmd *cobra.Command, args []string) {
	e, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	on, err := e.Enabled(cmd.Context(), args[0])
	if err != nil {
		exitErr("status", err)
	}
	if on {
		fmt.Println("enabled")
	} else {
		fmt.Println("disabled")
	}
}
