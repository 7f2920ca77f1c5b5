package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/recordcache"
	"github.com/unkn0wn-root/recordcache/config"
	async "github.com/unkn0wn-root/recordcache/hooks/async"
	"github.com/unkn0wn-root/recordcache/provider/bigcache"
	"github.com/unkn0wn-root/recordcache/provider/redis"
	"github.com/unkn0wn-root/recordcache/provider/ristretto"
	"github.com/unkn0wn-root/recordcache/sloghooks"
)

type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "recordcachectl",
		Short:         "Inspect and exercise the record cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		keyCmd(a),
		ttlCmd(a),
		inspectCmd(a),
		getCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	a.cfg = cfg
	a.log = l.Named("recordcachectl")
	return nil
}

// recordType returns the configured type, or an ad-hoc one keyed by the
// attribute names given on the command line.
func (a *app) recordType(name string, f recordcache.Filter) (recordcache.RecordType, config.TypeConfig) {
	if tc, ok := a.cfg.Type(name); ok {
		return tc.RecordType(), tc
	}
	tc := config.TypeConfig{Name: name, Keys: f.Names()}
	return tc.RecordType(), tc
}

// handle connects the configured cache backend. A connection failure is
// logged and leaves the handle unconfigured, so lookups fall back to the store.
func (a *app) handle(ctx context.Context) (*recordcache.Handle, error) {
	c := a.cfg.Cache
	switch c.Backend {
	case "redis":
		h := recordcache.NewHandle(redis.Dialer(&goredis.Options{Password: c.Password, DB: c.DB}))
		if err := h.Configure(ctx, c.Host, c.Port); err != nil {
			a.log.Warn("cache unavailable; reading from store only", zap.Error(err))
		}
		return h, nil
	case "ristretto":
		p, err := ristretto.New(ristretto.Config{NumCounters: 1e5, MaxCost: 64 << 20, BufferItems: 64, CostBySize: true})
		if err != nil {
			return nil, err
		}
		h := recordcache.NewHandle(nil)
		return h, h.Use(p)
	case "bigcache":
		p, err := bigcache.New(ctx, bigcache.Config{LifeWindow: recordcache.DefaultTTLMinutes * time.Minute})
		if err != nil {
			return nil, err
		}
		h := recordcache.NewHandle(nil)
		return h, h.Use(p)
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
}

// events writes cache hits, misses and faults to w as slog text records at
// the configured level. Callers Close it to flush queued events.
func (a *app) events(w io.Writer) *async.Hooks {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return async.New(sloghooks.New(l, sloghooks.Options{}), 1, 256)
}

// parseAttrs turns name=value arguments into an ordered filter. Integer
// values become int64 so they compare numerically in the store.
func parseAttrs(args []string) (recordcache.Filter, error) {
	var f recordcache.Filter
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("attribute %q: want name=value", arg)
		}
		if _, dup := f.Get(name); dup {
			return nil, fmt.Errorf("attribute %q given twice", name)
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			f = f.And(name, n)
			continue
		}
		f = f.And(name, value)
	}
	return f, nil
}
