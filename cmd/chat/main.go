// Command chat is an interactive console client for the QA core. It keeps
// the conversation history in memory so follow-up questions resolve against
// earlier turns.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/grainlab/corpus-assistant/internal/bootstrap"
	"github.com/grainlab/corpus-assistant/internal/config"
	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("chat", "error")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	fmt.Println("Ask a question (empty line or Ctrl-D to exit).")

	var history []domain.Turn
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		answer, err := app.AnswerUC.Answer(ctx, question, history, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println()
			fmt.Println("Sources:")
			for _, source := range answer.Sources {
				fmt.Printf("  - %s (%s)\n", source.Document.Title, source.Document.URL)
			}
		}
		fmt.Println()

		history = append(history,
			domain.Turn{Role: "user", Text: question},
			domain.Turn{Role: "assistant", Text: answer.Text},
		)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}
