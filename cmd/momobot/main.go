// Command momobot runs the ordering assistant with a local console chat
// harness standing in for the platform adapters. Type free text, tap
// buttons/lists with "/tap <id>", and share a location with
// "/loc <lat>,<lng>[,name]".
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/bhandaridiwash/newchatbot/internal/catalog"
	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/metrics"
	"github.com/bhandaridiwash/newchatbot/internal/oracle"
	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/router"
	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/internal/tools"
	"github.com/bhandaridiwash/newchatbot/pkg/config"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

const sessionTTL = 24 * time.Hour

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	userID := flag.String("user", "console-user", "user id for the console session")
	flag.Parse()

	logger := logx.NewLogger("momobot")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := buildSessionStore(ctx, cfg)
	if err != nil {
		logger.Error("session store: %v", err)
		os.Exit(1)
	}

	cat, ord, err := buildGateways(cfg)
	if err != nil {
		logger.Error("gateways: %v", err)
		os.Exit(1)
	}

	messenger := chat.NewConsoleMessenger(os.Stdout)
	handlers := tools.NewHandlers(tools.Config{
		Restaurant:     cfg.Restaurant.Name,
		Currency:       cfg.Restaurant.Currency,
		DepositPercent: cfg.Restaurant.DepositPercent,
	}, messenger, cat, ord, store)
	registry := tools.NewRegistry(handlers)

	brain := buildOracle(cfg)

	var recorder metrics.Recorder = metrics.NopRecorder{}
	if cfg.Metrics.Addr != "" {
		recorder = metrics.NewPrometheusRecorder()
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Warn("metrics listener: %v", err)
			}
		}()
	}

	rt := router.New(store, registry, brain, cfg.Oracle.Provider, messenger, recorder)

	logger.Info("chatting as %s (oracle: %s, sessions: %s)", *userID, cfg.Oracle.Provider, cfg.Storage.SessionBackend)
	fmt.Println("Type a message, /tap <id>, /loc <lat>,<lng>[,name], or /quit.")

	repl(ctx, rt, *userID)
}

func repl(ctx context.Context, rt *router.Router, userID string) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return
		}

		ev := chat.Event{UserID: userID, Platform: chat.PlatformConsole}
		switch {
		case strings.HasPrefix(line, "/tap "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/tap "))
			ev.Interactive = &chat.InteractivePayload{Type: "button_reply", ID: id, Title: id}
		case strings.HasPrefix(line, "/loc "):
			loc, err := parseLoc(strings.TrimPrefix(line, "/loc "))
			if err != nil {
				fmt.Println("usage: /loc <lat>,<lng>[,name]")
				continue
			}
			ev.Location = loc
		default:
			ev.Text = line
		}

		if err := rt.HandleEvent(ctx, ev); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func parseLoc(s string) (*chat.Location, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ",", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("need lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	loc := &chat.Location{Latitude: lat, Longitude: lng}
	if len(parts) == 3 {
		loc.Name = strings.TrimSpace(parts[2])
	}
	return loc, nil
}

func buildSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Storage.SessionBackend {
	case config.SessionBackendRedis:
		return session.NewRedisStore(ctx, cfg.Storage.RedisAddr, sessionTTL)
	case config.SessionBackendSQLite:
		return session.NewSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return session.NewMemoryStore(), nil
	}
}

func buildGateways(cfg *config.Config) (catalog.Gateway, order.Gateway, error) {
	if cfg.Storage.PostgresDSN == "" {
		return catalog.NewStockMenu(), order.NewMemoryGateway(), nil
	}
	db, err := sql.Open("postgres", cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return catalog.NewPostgresGateway(db), order.NewPostgresGateway(db), nil
}

func buildOracle(cfg *config.Config) oracle.Oracle {
	switch cfg.Oracle.Provider {
	case config.OracleAnthropic:
		return oracle.NewAnthropicOracle(cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Restaurant.Name)
	case config.OracleOpenAI:
		return oracle.NewOpenAIOracle(cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Restaurant.Name)
	default:
		return oracle.NewRulesOracle()
	}
}
