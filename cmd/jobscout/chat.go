package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/model"
)

var chatCmd = &cobra.Command{
	Use:   "chat <job-id> [question...]",
	Short: "Ask the AI about a posting",
	Long: "Streams an answer about the posting. The first question of a conversation carries the posting's details. " +
		"Without a question the conversation so far is printed and marked as read.",
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, cfg, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	jobID := args[0]
	if len(args) == 1 {
		job, err := a.MarkChatRead(jobID)
		if err != nil {
			return err
		}
		printConversation(job)
		return nil
	}

	ctx, stop := signalContext()
	defer stop()

	res := a.SendChatTurn(ctx, jobID, strings.Join(args[1:], " "))
	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return errors.New(res.Error)
	}
	// Only the console notifier streams chunks to stdout.
	if cfg.Notification.Type == "log" {
		fmt.Print(res.Response)
	}
	fmt.Println()
	if _, err := a.MarkChatRead(jobID); err != nil {
		logger.Warn("marking chat read failed", "job_id", jobID, "error", err)
	}
	return nil
}

func printConversation(job model.JobPosting) {
	fmt.Printf("%s | %s\n\n", job.Company, job.Title)
	if len(job.AIMessages) == 0 {
		fmt.Println("대화 내역이 없습니다.")
		return
	}
	for _, m := range job.AIMessages {
		who := "나"
		if m.Role == model.RoleAssistant {
			who = "AI"
		}
		fmt.Printf("[%s] %s\n%s\n\n", m.Timestamp.Format("2006-01-02 15:04"), who, m.Content)
	}
}
