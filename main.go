package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/colecperry/slack-bot/config"
	"github.com/colecperry/slack-bot/handler"
)

func main() {
	digestOnce := flag.Bool("digest", false, "post yesterday's digest and exit (for external schedulers)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	h, err := handler.NewHandler(cfg)
	if err != nil {
		slog.Error("NewHandler failed", slog.Any("err", err))
		os.Exit(1)
	}

	if *digestOnce {
		if err := h.RunDailyDigest(); err != nil {
			slog.Error("digest failed", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	if err := h.StartDigestScheduler(); err != nil {
		slog.Error("StartDigestScheduler failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := h.Handle(); err != nil {
		slog.Error("Server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
