// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/newsfeed/internal/bot"
	"github.com/0x0BSoD/newsfeed/internal/bot/middleware"
	"github.com/0x0BSoD/newsfeed/internal/botkit"
	"github.com/0x0BSoD/newsfeed/internal/config"
	"github.com/0x0BSoD/newsfeed/internal/engine"
	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/llm"
	"github.com/0x0BSoD/newsfeed/internal/provider"
	"github.com/0x0BSoD/newsfeed/internal/refresher"
	"github.com/0x0BSoD/newsfeed/internal/reporter"
	"github.com/0x0BSoD/newsfeed/internal/server"
)

const reportQuietPeriod = 15 * time.Minute

func main() {
	cfg := config.Get()

	source, err := newProvider(cfg)
	if err != nil {
		log.Printf("[ERROR] failed to create provider: %v", err)
		return
	}
	if cfg.Fallback {
		source = provider.WithFallback(source)
	}

	var botAPI *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] failed to create botAPI: %v", err)
			return
		}
	}

	var (
		store = feedstore.New(feedstore.WithCap(cfg.RetentionCap))
		feed  = engine.New(store, refresher.New(
			store,
			source,
			newReporter(botAPI, cfg.TelegramAdminChatID),
			cfg.RefreshInterval,
			cfg.DefaultCategory,
		))
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.New(feed),
			ReadHeaderTimeout: 10 * time.Second,
		}
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	feed.Activate(ctx)
	defer func() {
		feed.Deactivate()
		feed.Wait()
		log.Printf("[INFO] refresher stopped")
	}()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] failed to run http server: %v", err)
				cancel()
				return
			}

			log.Printf("[INFO] http server stopped")
		}
	}()
	log.Printf("[INFO] serving news on %s", cfg.HTTPAddr)

	if botAPI != nil {
		newsBot := botkit.New(botAPI)
		newsBot.RegisterCmdView("news", bot.ViewCmdNews(feed))
		newsBot.RegisterCmdView("item", bot.ViewCmdItem(feed))
		newsBot.RegisterCmdView("status", bot.ViewCmdStatus(feed))
		newsBot.RegisterCmdView(
			"refresh",
			middleware.AdminsOnly(
				cfg.TelegramChannelID,
				bot.ViewCmdRefresh(feed),
			),
		)

		go func(ctx context.Context) {
			if err := newsBot.Run(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("[ERROR] failed to run botkit: %v", err)
					return
				}

				log.Printf("[INFO] botkit stopped")
			}
		}(ctx)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] failed to shutdown http server: %v", err)
	}
}

func newProvider(cfg config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.AIKey == "" && cfg.AIBaseURL == "" {
			return nil, errors.New(`ai_key is required when provider is "openai"`)
		}
		client := llm.NewOpenAI(cfg.AIBaseURL, cfg.AIKey, cfg.AIModel, float32(cfg.AITemperature), cfg.AITimeout)
		log.Printf("[INFO] using OpenAI-compatible generator (model: %s)", cfg.AIModel)
		return provider.NewGenerator(client, "openai", cfg.BatchSize), nil
	case "ollama":
		if cfg.AIBaseURL == "" {
			return nil, errors.New(`ai_base_url is required when provider is "ollama"`)
		}
		client, err := llm.NewOllama(cfg.AIBaseURL, cfg.AIModel, float32(cfg.AITemperature), cfg.AITimeout)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] using Ollama generator (model: %s)", cfg.AIModel)
		return provider.NewGenerator(client, "ollama", cfg.BatchSize), nil
	case "rss":
		var summarizer *provider.Summarizer
		if cfg.AIKey != "" {
			summarizer = provider.NewSummarizer(
				llm.NewOpenAI(cfg.AIBaseURL, cfg.AIKey, cfg.AIModel, float32(cfg.AITemperature), cfg.AITimeout),
			)
		}
		log.Printf("[INFO] using RSS provider (%d feeds)", len(cfg.RSSFeeds))
		return provider.NewRSS(provider.RSSConfig{
			Feeds:          cfg.RSSFeeds,
			FilterKeywords: cfg.FilterKeywords,
			TrendingWindow: cfg.TrendingWindow,
			Insecure:       cfg.RSSInsecure,
		}, summarizer), nil
	default:
		return nil, errors.New("unknown provider " + cfg.Provider)
	}
}

// newReporter returns nil without a bot so failures are only logged.
func newReporter(botAPI *tgbotapi.BotAPI, adminID int64) refresher.FailureReporter {
	if botAPI == nil {
		return nil
	}
	return reporter.New(botAPI, adminID, reportQuietPeriod)
}
