package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unkn0wn-root/recordcache"
	"github.com/unkn0wn-root/recordcache/codec"
	"github.com/unkn0wn-root/recordcache/internal/wire"
	zaplog "github.com/unkn0wn-root/recordcache/log/zap"
	"github.com/unkn0wn-root/recordcache/provider/redis"
	"github.com/unkn0wn-root/recordcache/store/gormstore"
	"github.com/unkn0wn-root/recordcache/store/pgstore"
)

func keyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "key <type> [name=value ...]",
		Short: "Print the cache key for a lookup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseAttrs(args[1:])
			if err != nil {
				return err
			}
			rt, _ := a.recordType(args[0], f)
			fmt.Fprintln(cmd.OutOrStdout(), recordcache.GenerateKey(rt, f))
			return nil
		},
	}
}

func ttlCmd(a *app) *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "ttl <type>",
		Short: "Print the resolved cache TTL in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _ := a.recordType(args[0], nil)
			if cmd.Flags().Changed("minutes") {
				rt.TTL = minutes
			}
			fmt.Fprintln(cmd.OutOrStdout(), recordcache.ResolveTTL(rt))
			return nil
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "override the type's TTL (minutes)")
	return cmd
}

func inspectCmd(a *app) *cobra.Command {
	var showPayloads bool
	cmd := &cobra.Command{
		Use:   "inspect <key>",
		Short: "Describe the entry stored under a cache key (redis backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Cache.Backend != "redis" {
				return fmt.Errorf("inspect needs the redis backend, configured %q", a.cfg.Cache.Backend)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			c := a.cfg.Cache
			h := recordcache.NewHandle(redis.Dialer(&goredis.Options{Password: c.Password, DB: c.DB}))
			if err := h.Configure(ctx, c.Host, c.Port); err != nil {
				return err
			}
			defer h.Close(context.Background())

			p, _ := h.Provider()
			rp, ok := p.(*redis.Redis)
			if !ok {
				return errors.New("inspect: unexpected provider")
			}
			raw, hit, err := rp.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !hit {
				fmt.Fprintln(cmd.OutOrStdout(), "absent")
				return nil
			}
			ttl, err := rp.Client().PTTL(ctx, args[0]).Result()
			if err != nil {
				return err
			}
			return describe(cmd, args[0], raw, ttl, showPayloads)
		},
	}
	cmd.Flags().BoolVar(&showPayloads, "payloads", false, "print each record payload")
	return cmd
}

func describe(cmd *cobra.Command, key string, raw []byte, ttl time.Duration, showPayloads bool) error {
	payloads, many, err := wire.Decode(raw)
	if err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}
	shape := "one"
	if many {
		shape = "many"
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "key\t%s\n", key)
	fmt.Fprintf(tw, "type\t%s\n", recordcache.KeyType(key))
	fmt.Fprintf(tw, "shape\t%s\n", shape)
	fmt.Fprintf(tw, "records\t%d\n", len(payloads))
	fmt.Fprintf(tw, "bytes\t%d\n", len(raw))
	if ttl > 0 {
		fmt.Fprintf(tw, "ttl\t%s\n", ttl.Round(time.Second))
	}
	if showPayloads {
		for i, p := range payloads {
			fmt.Fprintf(tw, "[%d]\t%q\n", i, p)
		}
	}
	return tw.Flush()
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> name=value [name=value ...]",
		Short: "Read-through lookup of rows matching the attributes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseAttrs(args[1:])
			if err != nil {
				return err
			}
			rt, tc := a.recordType(args[0], f)

			ctx := cmd.Context()
			st, closeStore, err := a.rowStore(ctx, tc.TableName())
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := a.handle(ctx)
			if err != nil {
				return err
			}
			defer h.Close(context.Background())

			cd, err := rowCodec(a.cfg.Codec)
			if err != nil {
				return err
			}
			ev := a.events(cmd.ErrOrStderr())
			defer ev.Close()

			m, err := recordcache.New[recordcache.Row](recordcache.Options[recordcache.Row]{
				Type:   rt,
				Handle: h,
				Store:  st,
				Codec:  cd,
				Logger: zaplog.ZapLogger{L: a.log},
				Hooks:  ev,
			})
			if err != nil {
				return err
			}

			res, err := m.GetCached(ctx, f)
			if err != nil {
				return err
			}
			a.log.Debug("lookup done", zap.String("key", m.Key(f)), zap.Stringer("shape", res.Shape()))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Shape())
			enc := json.NewEncoder(out)
			for _, r := range res.All() {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) rowStore(ctx context.Context, table string) (recordcache.Store[recordcache.Row], func(), error) {
	switch a.cfg.Store.Driver {
	case "sqlite":
		db, err := gorm.Open(gormsqlite.Open(a.cfg.Store.DSN), &gorm.Config{Logger: logger.Discard})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return gormstore.NewRows(db, table), closeFn, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return pgstore.New[recordcache.Row](pool, table, pgstore.WithScan[recordcache.Row](pgstore.ScanRow)), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
}

func rowCodec(name string) (codec.Codec[recordcache.Row], error) {
	switch name {
	case "json":
		return codec.JSON[recordcache.Row]{}, nil
	case "sonic":
		return codec.Sonic[recordcache.Row]{}, nil
	case "msgpack":
		return codec.Msgpack[recordcache.Row]{}, nil
	case "cbor":
		return codec.NewCBOR[recordcache.Row](false)
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
