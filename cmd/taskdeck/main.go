package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdeck/internal/bot"
	"taskdeck/internal/client"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	sessions := session.NewStore(cfg.StateDir)
	apiClient := client.New(cfg.APIBaseURL)

	telegramBot, err := bot.New(&cfg, apiClient, sessions)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewScheduler(time.Local)
	digest := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDigest(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("digest: %v", err)
		}
	}
	if _, err := scheduler.Schedule(cfg.DigestTime, cfg.DigestInterval, digest); err != nil {
		log.Fatalf("schedule digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] taskdeck bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("[info] shutdown complete")
}
