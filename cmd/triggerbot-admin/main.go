// Command triggerbot-admin is the operator cli: sender blocks, limit checks, dry-run
// campaign matching, migrations and ops API tokens
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/module"
	"triggerbot/internal/platform/config"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/store"
	campaignsdom "triggerbot/internal/services/campaigns/domain"
	campaignsmod "triggerbot/internal/services/campaigns/module"
	rldom "triggerbot/internal/services/ratelimit/domain"
	rlmod "triggerbot/internal/services/ratelimit/module"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, cfg: config.New(), open: openStore}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore connects postgres (and clickhouse/redis when enabled) and builds the admin ports
func openStore(ctx context.Context, cfg config.Conf) (*env, error) {
	log := logger.Named("admin")
	st, err := store.Open(ctx, store.FromConfig(cfg, "admin"), store.WithLogger(*log), store.Require(store.Postgres))
	if err != nil {
		return nil, err
	}
	deps := modkit.FromStore(st, cfg, *log)
	return &env{
		admin:    module.MustPortsOf[rldom.AdminPort](rlmod.New(deps)),
		selector: module.MustPortsOf[campaignsdom.SelectorPort](campaignsmod.New(deps)),
		db:       st.PG,
		ch:       st.CH,
		close:    func() error { return st.Close(context.Background()) },
	}, nil
}
