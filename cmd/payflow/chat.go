package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/payflowkr/payflow/internal/presentation/tui"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive payroll conversation",
	Long:  `Starts a REPL on the terminal. Type Korean payroll requests ("2026년 1월 전직원 급여 처리") and the assistant walks the workflow stage by stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger := createLogger(cfg, debug, false)

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		engine, cleanup, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		render := func(s string) (string, error) { return s + "\n", nil }
		if interactive {
			tui.PrintBanner()
			render = tui.NewRenderer()
		}

		fmt.Printf("session: %s (type 'exit' to quit)\n\n", sessionID)

		reader := bufio.NewReader(os.Stdin)
		for {
			if interactive {
				fmt.Print("> ")
			}
			line, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println()
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				return nil
			}

			out, err := engine.HandleWithFallback(cmd.Context(), sessionID, text)
			if err != nil {
				logger.Error("turn failed", "session_id", sessionID, "err", err)
				fmt.Println("처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
				continue
			}

			rendered, rerr := render(out.Reply)
			if rerr != nil {
				rendered = out.Reply + "\n"
			}
			fmt.Print(rendered)

			if len(out.Suggestions) > 0 && interactive {
				fmt.Printf("다음 입력 예시: %s\n\n", strings.Join(out.Suggestions, " / "))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (default: new random session)")
}
