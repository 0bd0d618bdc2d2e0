package module

import (
	"context"
	"testing"

	"triggerbot/internal/modkit"
	"triggerbot/internal/modkit/repokit"
	"triggerbot/internal/platform/config"

	"github.com/stretchr/testify/assert"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (nopDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error       { return fn(nopDB{}) }

type nopCH struct{}

func (nopCH) Insert(context.Context, string, [][]any) error { return nil }
func (nopCH) Exec(context.Context, string) error            { return nil }
func (nopCH) Ping(context.Context) error                    { return nil }
func (nopCH) Close() error                                  { return nil }

func TestSinks(t *testing.T) {
	cfg := config.New()
	cases := []struct {
		sink string
		ch   bool
		want []string
	}{
		{"", true, []string{"pg"}},
		{"pg", true, []string{"pg"}},
		{"clickhouse", true, []string{"clickhouse"}},
		{"clickhouse", false, []string{"pg"}},
		{"both", true, []string{"clickhouse", "pg"}},
		{"both", false, []string{"pg"}},
	}
	for _, c := range cases {
		t.Run(c.sink, func(t *testing.T) {
			t.Setenv("CORE_DELIVERYLOG_SINK", c.sink)
			deps := modkit.Deps{Cfg: cfg, PG: nopDB{}}
			if c.ch {
				deps.CH = nopCH{}
			}
			assert.Equal(t, c.want, New(deps).Sinks())
		})
	}
}
