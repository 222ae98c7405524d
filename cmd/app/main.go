package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crypto_dash/internal/app"
	"crypto_dash/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	// 1. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. System Bootstrapping (logs go to file only, the TUI owns the terminal)
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx, nil); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 3. Dashboard UI
	model := tui.New(ctx, bootstrap.Dashboard, bootstrap.Chart, bootstrap.Metrics)
	if bootstrap.Downloader != nil {
		model.SetIcons(bootstrap.Downloader)
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tui.Bind(p, bootstrap.Chart)

	slog.InfoContext(ctx, "✨ Crypto Dash operational")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		slog.Error("❌ UI exited with error", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Shutting down gracefully...")
}
