// Command triggerbot runs the chat trigger engine: the gateway session, the inbound
// queue and the ops API in one process
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"triggerbot/internal/adapters/gateway"
	"triggerbot/internal/core/version"
	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/module"
	"triggerbot/internal/platform/config"
	"triggerbot/internal/platform/logger"
	phttp "triggerbot/internal/platform/net/http"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/platform/store/migrations"
	"triggerbot/internal/services/api"
	metamod "triggerbot/internal/services/api/meta/module"
	sessionmod "triggerbot/internal/services/api/session/module"
	campaignsdom "triggerbot/internal/services/campaigns/domain"
	campaignsmod "triggerbot/internal/services/campaigns/module"
	convdom "triggerbot/internal/services/conversations/domain"
	convmod "triggerbot/internal/services/conversations/module"
	dlogdom "triggerbot/internal/services/deliverylog/domain"
	dlogmod "triggerbot/internal/services/deliverylog/module"
	dispatchdom "triggerbot/internal/services/dispatch/domain"
	dispatchmod "triggerbot/internal/services/dispatch/module"
	orchdom "triggerbot/internal/services/orchestrator/domain"
	orchmod "triggerbot/internal/services/orchestrator/module"
	plansdom "triggerbot/internal/services/plans/domain"
	plansmod "triggerbot/internal/services/plans/module"
	rldom "triggerbot/internal/services/ratelimit/domain"
	rlmod "triggerbot/internal/services/ratelimit/module"

	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine; the environment may already carry everything
	_ = godotenv.Load()

	log := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.New(), *log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("triggerbot stopped")
	}
}

func run(ctx context.Context, root config.Conf, log logger.Logger) error {
	log.Info().Str("build", version.Info().String()).Msg("starting")

	st, err := store.Open(ctx, store.FromConfig(root, "bot"), store.WithLogger(log), store.Require(store.Postgres))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	if root.MayBool("CORE_MIGRATE_ON_START", true) {
		applied, err := migrations.ApplyPG(ctx, st.PG)
		if err != nil {
			return err
		}
		if st.CH != nil {
			if err := migrations.ApplyCH(ctx, st.CH); err != nil {
				return err
			}
		}
		log.Info().Strs("applied", applied).Msg("migrations done")
	}

	deps := modkit.FromStore(st, root, log)

	gwOpts, autostart := gateway.FromConfig(root)
	gw := gateway.New(gwOpts)
	defer func() { _ = gw.Stop() }()

	campaigns := campaignsmod.New(deps)
	limits := rlmod.New(deps)
	convs := convmod.New(deps)
	plans := plansmod.New(deps)
	dlog := dlogmod.New(deps)
	disp := dispatchmod.New(deps, gw)
	orch := orchmod.New(deps, orchmod.Inputs{
		Selector:   module.MustPortsOf[campaignsdom.SelectorPort](campaigns),
		Limiter:    module.MustPortsOf[rldom.LimiterPort](limits),
		Tracker:    module.MustPortsOf[convdom.TrackerPort](convs),
		Plans:      module.MustPortsOf[plansdom.ReaderPort](plans),
		Log:        module.MustPortsOf[dlogdom.LogPort](dlog),
		Dispatcher: module.MustPortsOf[dispatchdom.DispatcherPort](disp),
	})
	for _, m := range []module.Module{campaigns, convs, plans, dlog, disp, orch} {
		module.Register(m.Name(), m.Ports())
	}

	auth, err := api.AuthFromConfig(root)
	if err != nil {
		return err
	}
	srv := phttp.NewServer(root)
	api.Mount(srv.Router(), api.Options{
		Config:    root,
		Public:    []module.Module{metamod.New(deps)},
		Protected: []module.Module{sessionmod.New(gw), limits},
		Auth:      auth,
	})
	log.Info().Strs("modules", module.Registered()).Msg("modules wired")

	if autostart {
		// a failed dial leaves the session stopped; operators retry via /session/start
		if err := gw.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("gateway autostart failed")
		}
	}

	inbound := module.MustPortsOf[orchdom.InboundPort](orch)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 2)
	go func() { errc <- inbound.Run(ctx, gw.Events()) }()
	go func() { errc <- srv.Run(ctx) }()

	// the first component to stop takes the other down; both drain before the store closes
	err = <-errc
	cancel()
	if err2 := <-errc; err == nil {
		err = err2
	}
	if err == nil {
		err = context.Cause(ctx)
	}
	return err
}
