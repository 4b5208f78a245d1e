package main

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/404PageFinder/OurNest-App/internal/api"
	"github.com/404PageFinder/OurNest-App/internal/config"
	"github.com/404PageFinder/OurNest-App/internal/logging"
	"github.com/404PageFinder/OurNest-App/internal/session"
	"github.com/404PageFinder/OurNest-App/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Configure(cfg.Log.Path)
	logging.SetTraceEnabled(cfg.Log.Trace)

	client := api.New(cfg.Server.BaseURL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)

	// restore persisted credentials if enabled
	var restored session.Session
	if cfg.Session.Persist {
		if s, err := session.Load(); err == nil {
			restored = s
			client.SetToken(s.Token)
		} else {
			logging.Error(err)
		}
	}

	p := tea.NewProgram(tui.New(ctx, cfg, client, restored), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
