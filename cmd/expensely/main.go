// Command expensely is a terminal client for the expense tracker. Its
// profile lives in a local SQLite file; signing in goes through the API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"expensely/internal/config"
	"expensely/internal/database"
	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/profile"
	"expensely/internal/session"
	"expensely/internal/theme"
	"expensely/internal/transactions"
)

const (
	localProfile = "local"
	keyCookies   = "auth_cookies"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.SQLiteConfig(filepath.Join(cfg.ProfileHome, "profile.db")))
	if err != nil {
		return err
	}
	defer dbManager.Close()
	if err := dbManager.RunMigrations(); err != nil {
		return err
	}

	systemDark, _ := theme.ParseColorFGBG(os.Getenv("COLORFGBG"))
	p, err := profile.Open(ctx, kvstore.NewGormBackend(dbManager.DB()), localProfile, profile.Config{
		Latency:         transactions.LatencyProfile(cfg.LatencyProfile),
		NotificationTTL: cfg.NotificationTTL,
		SystemDark:      systemDark,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	client, err := session.NewHTTPClient(cfg.APIURL)
	if err != nil {
		return err
	}
	restoreCookies(ctx, p.KV, client)
	defer saveCookies(ctx, p.KV, client)

	a := newApp(p, session.NewStore(p.KV, client), os.Stdout)
	return a.run(ctx, args)
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func restoreCookies(ctx context.Context, kv *kvstore.Store, client *session.HTTPClient) {
	saved, err := kvstore.Load[[]savedCookie](ctx, kv, keyCookies, nil)
	if err != nil || len(saved) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	client.SetCookies(cookies)
}

func saveCookies(ctx context.Context, kv *kvstore.Store, client *session.HTTPClient) {
	ctx = context.WithoutCancel(ctx)
	cookies := client.Cookies()
	if len(cookies) == 0 {
		_ = kv.Delete(ctx, keyCookies)
		return
	}
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	if err := kv.SetJSON(ctx, keyCookies, saved); err != nil {
		logger.Named("cli").Warnw("failed to persist session cookies", "error", err)
	}
}
