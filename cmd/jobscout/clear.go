package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored posting, raw dump and crawl log",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	if !clearYes {
		fmt.Print("모든 데이터를 삭제할까요? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("취소했습니다.")
			return nil
		}
	}

	a, _, err := openApp(os.Stdout, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ClearAll(); err != nil {
		logger.Error("clear failed", "error", err)
		return err
	}
	fmt.Println("모든 데이터를 삭제했습니다.")
	return nil
}
