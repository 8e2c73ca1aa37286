package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smart-store-agent/internal/assistant"
	"smart-store-agent/internal/auth"
	"smart-store-agent/internal/config"
	"smart-store-agent/internal/httpapi"
	"smart-store-agent/internal/llm"
	"smart-store-agent/internal/scheduler"
	"smart-store-agent/internal/storage"
	"smart-store-agent/internal/suggest"
	"smart-store-agent/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmClient, err := llm.NewFactory(cfg).CreateClient(ctx, string(cfg.LLMProvider), cfg.Model())
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}
	log.Printf("Using llm provider %s (model %q)", cfg.LLMProvider, cfg.Model())

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	store := storage.NewFileStore(cfg.ProductsFilePath)
	opts := []assistant.Option{}
	if rec != nil {
		opts = append(opts, assistant.WithRecorder(rec))
	}
	agent := assistant.New(store, suggest.NewGenerator(llmClient), opts...)

	httpErr := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		srv := httpapi.NewServer(agent.ForChannel(httpapi.ChannelName), cfg.RequestTimeout)
		go func() {
			httpErr <- srv.ListenAndServe(ctx, cfg.HTTPAddr)
		}()
	}

	if cfg.TelegramBotToken != "" {
		bot := newTelegramBot(cfg, agent, rec)
		sched := startReportScheduler(cfg, bot)
		defer sched.Stop()
		go bot.Start(ctx)
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down")
	case err := <-httpErr:
		if err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	}
}

func newTelegramBot(cfg *config.Config, agent *assistant.Assistant, rec storage.Recorder) *telegram.Bot {
	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Printf("failed to init allowlist repo: %v", err)
		} else {
			allowRepo = repo
		}
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}
	if authSvc.Open() {
		log.Println("Allowlist is empty, the bot is open to everyone")
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		agent.ForChannel(telegram.ChannelName),
		authSvc,
		rec,
		cfg.AdminUserID,
		cfg.MessageParseMode,
		cfg.RequestTimeout,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}
	return bot
}

func startReportScheduler(cfg *config.Config, bot *telegram.Bot) *scheduler.Scheduler {
	sched := scheduler.New()
	if cfg.AdminUserID == 0 || cfg.LogFilePath == "" || cfg.ReportCron == "" {
		log.Println("⚠️ Daily reports disabled (no admin, event log or schedule)")
		return sched
	}
	if err := sched.Add(cfg.ReportCron, "daily-report", bot.DailyReport); err != nil {
		log.Printf("failed to schedule daily report: %v", err)
		return sched
	}
	sched.Start()
	return sched
}
