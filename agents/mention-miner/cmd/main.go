package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mentionminer "comment-insights/agents/mention-miner"
	"comment-insights/shared/config"
	"comment-insights/shared/logger"
	"comment-insights/shared/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Setup(&cfg.Logging); err != nil {
		logger.Fatalf("Failed to configure logging: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := mentionminer.NewMentionAgent(cfg)

	if len(os.Args) > 1 && os.Args[1] == "--watch" {
		fmt.Println("Starting scheduler...")
		s := scheduler.New(cfg, agent)
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatalf("Scheduler failed: %v", err)
		}
		return
	}

	if err := agent.Initialize(); err != nil {
		logger.Fatalf("Failed to initialize agent: %v", err)
	}

	if _, err := agent.Process(ctx, cfg.Run.VideoID); err != nil {
		if errors.Is(err, mentionminer.ErrAlreadyProcessed) {
			fmt.Printf("Video %s was already processed, nothing to do\n", cfg.Run.VideoID)
			return
		}
		logger.Fatalf("Failed to run: %v", err)
	}
}
