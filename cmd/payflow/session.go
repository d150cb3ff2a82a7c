package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/payflowkr/payflow"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored conversation sessions",
	Long:  `List, inspect, and remove the workflow state persisted per session.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := sessionEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		sessions, err := engine.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No stored sessions found.")
			return nil
		}

		fmt.Println("Stored sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the workflow state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := sessionEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		sc, err := engine.Context(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading session %q: %w", args[0], err)
		}
		if sc == nil {
			fmt.Printf("Session %q has no stored state.\n", args[0])
			return nil
		}

		data, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := sessionEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		hasError := false
		for _, sessionID := range args {
			if err := engine.Reset(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing %q: %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session %q\n", sessionID)
			}
		}
		if hasError {
			os.Exit(1)
		}
		return nil
	},
}

func sessionEngine(cmd *cobra.Command) (*payflow.Engine, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger := createLogger(cfg, debug, false)
	return buildEngine(cfg, logger)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
