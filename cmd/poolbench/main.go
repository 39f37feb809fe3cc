package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"

	"github.com/tuannm99/novapool/internal"
	"github.com/tuannm99/novapool/internal/bufferpool"
	"github.com/tuannm99/novapool/internal/storage"
	"github.com/tuannm99/novapool/internal/wal"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	ops := flag.Int("ops", 10000, "Number of workload operations")
	seed := flag.Int64("seed", 1, "Workload RNG seed")
	flag.Parse()

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		slog.Error("load config", "path", *cfgPath, "err", err)
		os.Exit(1)
	}

	mode, err := storage.ParseMode(cfg.Storage.Mode)
	if err != nil {
		slog.Error("bad storage mode", "mode", cfg.Storage.Mode, "err", err)
		os.Exit(1)
	}

	store, err := storage.OpenStore(mode, cfg.Storage.Workdir, cfg.Storage.Base,
		storage.WithMaxOpenSegments(cfg.Storage.MaxOpenSegments))
	if err != nil {
		slog.Error("open store", "err", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var log *wal.Manager
	if cfg.WAL.Enabled {
		log, err = wal.Open(cfg.WAL.Dir)
		if err != nil {
			slog.Error("open wal", "dir", cfg.WAL.Dir, "err", err)
			os.Exit(1)
		}
		defer func() { _ = log.Close() }()

		// Redo any page images a previous run logged before it died.
		if err := log.Recover(storage.NewWALWriter(store)); err != nil {
			slog.Error("wal recover", "err", err)
			os.Exit(1)
		}
	}

	if cfg.Pool.Capacity <= 0 {
		cfg.Pool.Capacity = bufferpool.DefaultCapacity
	}
	var opts []bufferpool.Option
	if cfg.Pool.Replacer == "clock" {
		opts = append(opts, bufferpool.WithReplacer(bufferpool.NewClockReplacer(cfg.Pool.Capacity)))
	}
	pool := bufferpool.NewPool(store, log, cfg.Pool.Capacity, opts...)

	slog.Info("pool ready",
		"capacity", pool.Capacity(),
		"replacer", cfg.Pool.Replacer,
		"storage", mode.String(),
	)

	if err := run(pool, log, *ops, *seed); err != nil {
		slog.Error("workload", "err", err)
		os.Exit(1)
	}

	s := pool.Stats()
	slog.Info("workload done",
		"ops", *ops,
		"resident", pool.Size(),
		"hits", s.Hits,
		"misses", s.Misses,
		"evictions", s.Evictions,
		"writebacks", s.Writebacks,
	)
}

// run drives a fetch-heavy mixed workload over a working set roughly four
// times the pool capacity, unpinning immediately so eviction stays possible.
func run(pool *bufferpool.Pool, log *wal.Manager, ops int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	var ids []storage.PageID
	hot := 4 * pool.Capacity()
	var lastLSN uint64

	for i := 0; i < ops; i++ {
		switch {
		case len(ids) < hot || rng.Intn(10) == 0:
			f, err := pool.NewPage()
			if err != nil {
				return err
			}
			id := f.PageID()
			f.Data()[0] = byte(id)
			if log != nil {
				lsn, err := log.AppendPageImage(int64(id), f.Data())
				if err != nil {
					return err
				}
				lastLSN = lsn
			}
			if err := pool.UnpinPage(id, true); err != nil {
				return err
			}
			ids = append(ids, id)

		default:
			id := ids[rng.Intn(len(ids))]
			f, err := pool.FetchPage(id)
			if err != nil {
				return err
			}
			dirty := rng.Intn(4) == 0
			if dirty {
				f.Data()[1]++
			}
			if err := pool.UnpinPage(id, dirty); err != nil {
				return err
			}
		}
	}

	if err := pool.FlushAll(); err != nil {
		return err
	}
	if log != nil {
		return log.Flush(lastLSN)
	}
	return nil
}
