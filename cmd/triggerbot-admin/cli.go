package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"triggerbot/internal/platform/config"
	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/store"
	"triggerbot/internal/platform/store/migrations"
	"triggerbot/internal/platform/validate"
	"triggerbot/internal/services/api/auth"
	campaignsdom "triggerbot/internal/services/campaigns/domain"
	rldom "triggerbot/internal/services/ratelimit/domain"
)

// env is what store-backed commands run against
type env struct {
	admin    rldom.AdminPort
	selector campaignsdom.SelectorPort
	db       store.TxRunner
	ch       store.Clickhouse
	close    func() error
}

type app struct {
	out  io.Writer
	cfg  config.Conf
	open func(context.Context, config.Conf) (*env, error)
	now  func() time.Time
}

type command struct {
	usage string
	store bool
	run   func(ctx context.Context, a *app, e *env, args []string) error
}

var commands = map[string]command{
	"block":   {"block -reason R [-hours N] <sender>", true, cmdBlock},
	"unblock": {"unblock <sender>", true, cmdUnblock},
	"ban":     {"ban -reason R <sender>", true, cmdBan},
	"check":   {"check <sender>", true, cmdCheck},
	"match":   {"match <text>", true, cmdMatch},
	"migrate": {"migrate", true, cmdMigrate},
	"token":   {"token -sub S [-ttl D]", false, cmdToken},
}

func (a *app) run(ctx context.Context, args []string) (err error) {
	if len(args) == 0 {
		return a.usage()
	}
	c, ok := commands[args[0]]
	if !ok {
		_ = a.usage()
		return perr.InvalidArgf("unknown command %q", args[0])
	}
	var e *env
	if c.store {
		if e, err = a.open(ctx, a.cfg); err != nil {
			return err
		}
		defer func() {
			if cerr := e.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}
	return c.run(ctx, a, e, args[1:])
}

func (a *app) usage() error {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "usage: triggerbot-admin <command> [flags]")
	for _, n := range names {
		fmt.Fprintln(a.out, "  "+commands[n].usage)
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sender parses fs and returns its single positional argument as a validated sender id
func sender(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "flags")
	}
	if fs.NArg() != 1 {
		return "", perr.InvalidArgf("%s: expected one sender", fs.Name())
	}
	s := fs.Arg(0)
	if err := validate.Var(s, "sender_id"); err != nil {
		return "", perr.WithField(err, "sender")
	}
	return s, nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func cmdBlock(ctx context.Context, a *app, e *env, args []string) error {
	fs := newFlags("block")
	reason := fs.String("reason", "", "why the sender is blocked")
	hours := fs.Int("hours", 0, "block length in hours; 0 uses the default")
	s, err := sender(fs, args)
	if err != nil {
		return err
	}
	var h *int
	if *hours != 0 {
		h = hours
	}
	if err := e.admin.Block(ctx, s, *reason, h); err != nil {
		return err
	}
	return cmdCheck(ctx, a, e, []string{s})
}

func cmdUnblock(ctx context.Context, a *app, e *env, args []string) error {
	s, err := sender(newFlags("unblock"), args)
	if err != nil {
		return err
	}
	if err := e.admin.Unblock(ctx, s); err != nil {
		return err
	}
	return cmdCheck(ctx, a, e, []string{s})
}

func cmdBan(ctx context.Context, a *app, e *env, args []string) error {
	fs := newFlags("ban")
	reason := fs.String("reason", "", "why the sender is banned")
	s, err := sender(fs, args)
	if err != nil {
		return err
	}
	if err := e.admin.BlockPermanently(ctx, s, *reason); err != nil {
		return err
	}
	return cmdCheck(ctx, a, e, []string{s})
}

func cmdCheck(ctx context.Context, a *app, e *env, args []string) error {
	s, err := sender(newFlags("check"), args)
	if err != nil {
		return err
	}
	rec, known, d, err := e.admin.Status(ctx, s)
	if err != nil {
		return err
	}
	v := rldom.LimitView{SenderID: s, Known: known, Decision: d}
	if known {
		v.Record = &rec
	}
	return a.print(v)
}

func cmdMatch(ctx context.Context, a *app, e *env, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return perr.InvalidArgf("match: expected message text")
	}
	d, ok, err := e.selector.DetectCampaign(ctx, text)
	if err != nil {
		return err
	}
	if !ok {
		return a.print(map[string]any{"matched": false})
	}
	return a.print(map[string]any{
		"matched":       true,
		"campaign_id":   d.CampaignID,
		"campaign_name": d.CampaignName,
		"keyword":       d.MatchedKeyword,
		"match_type":    d.MatchType,
		"priority":      d.Priority,
	})
}

func cmdMigrate(ctx context.Context, a *app, e *env, _ []string) error {
	applied, err := migrations.ApplyPG(ctx, e.db)
	if err != nil {
		return err
	}
	out := map[string]any{"pg": applied}
	if e.ch != nil {
		if err := migrations.ApplyCH(ctx, e.ch); err != nil {
			return err
		}
		out["clickhouse"] = "ok"
	}
	return a.print(out)
}

func cmdToken(_ context.Context, a *app, _ *env, args []string) error {
	fs := newFlags("token")
	sub := fs.String("sub", "", "operator name stamped as the token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "flags")
	}
	if *sub == "" {
		return perr.InvalidArgf("token: -sub is required")
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	tok, err := auth.Sign([]byte(a.cfg.Prefix("CORE_API_").MayString("JWT_SECRET", "")), *sub, *ttl, now())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}
