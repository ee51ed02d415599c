package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/manager"
	pmet "github.com/IvanBrykalov/pagecache/metrics/prom"
	"github.com/IvanBrykalov/pagecache/pagestore"
	"github.com/IvanBrykalov/pagecache/policy"
	"github.com/IvanBrykalov/pagecache/pool"
)

var (
	policyFlag = cli.StringFlag{
		Name:  "policy",
		Usage: "eviction policy: clock | gclock | lrd | lru | btree",
		Value: string(policy.LRU),
	}
	capacityFlag = cli.IntFlag{
		Name:  "capacity",
		Usage: "initial cache capacity in pages",
		Value: 256,
	}
	pagesFlag = cli.Uint64Flag{
		Name:  "pages",
		Usage: "number of distinct pages in the page file",
		Value: 10_000,
	}
	readsFlag = cli.IntFlag{
		Name:  "reads",
		Usage: "percentage of accesses that only read [0..100]",
		Value: 80,
	}
	innerFlag = cli.IntFlag{
		Name:  "inner",
		Usage: "percentage of pages that are B-tree inner pages [0..100]",
		Value: 5,
	}
	durationFlag = cli.DurationFlag{
		Name:  "duration",
		Usage: "workload duration",
		Value: 5 * time.Second,
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "number of worker goroutines",
		Value: runtime.GOMAXPROCS(0),
	}
	zipfSFlag = cli.Float64Flag{
		Name:  "zipf-s",
		Usage: "Zipf s > 1 (skew)",
		Value: 1.1,
	}
	zipfVFlag = cli.Float64Flag{
		Name:  "zipf-v",
		Usage: "Zipf v >= 1",
		Value: 1,
	}
	seedFlag = cli.Uint64Flag{
		Name:  "seed",
		Usage: "random seed (0 = time based)",
	}
	storeFlag = cli.StringFlag{
		Name:  "store",
		Usage: "page store: memory | file | leveldb",
		Value: "memory",
	}
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "directory for file and leveldb stores (default: a temporary directory)",
	}
	pageSizeFlag = cli.IntFlag{
		Name:  "page-size",
		Usage: "page size in bytes",
		Value: 4096,
	}
	cacheSizeFlag = cli.StringFlag{
		Name:  "cache-size",
		Usage: "memory budget of the cache manager, e.g. 64m",
		Value: "16m",
	}
	growthFlag = cli.Float64Flag{
		Name:  "growth",
		Usage: "growth factor; <= 1 keeps the cache at a fixed size",
		Value: 1.5,
	}
	thresholdFlag = cli.Float64Flag{
		Name:  "threshold",
		Usage: "thrashing fraction of the capacity that triggers growth (0 = never)",
		Value: 0.5,
	}
	metricsFlag = cli.StringFlag{
		Name:  "metrics",
		Usage: "serve Prometheus metrics at addr (e.g. :8080); empty = disabled",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "log cache and manager activity at debug level",
	}
)

var runCmd = cli.Command{
	Name:   "run",
	Usage:  "runs a Zipf page workload",
	Action: doRun,
	Flags: []cli.Flag{
		&policyFlag,
		&capacityFlag,
		&pagesFlag,
		&readsFlag,
		&innerFlag,
		&durationFlag,
		&workersFlag,
		&zipfSFlag,
		&zipfVFlag,
		&seedFlag,
		&storeFlag,
		&dirFlag,
		&pageSizeFlag,
		&cacheSizeFlag,
		&growthFlag,
		&thresholdFlag,
		&metricsFlag,
		&verboseFlag,
	},
}

func doRun(cliCtx *cli.Context) error {
	logger := logrus.New()
	logger.SetOutput(cliCtx.App.ErrWriter)
	if cliCtx.Bool(verboseFlag.Name) {
		logger.SetLevel(logrus.DebugLevel)
	}

	kind, err := policy.ParseKind(cliCtx.String(policyFlag.Name))
	if err != nil {
		return err
	}
	budget, err := manager.ParseSize(cliCtx.String(cacheSizeFlag.Name))
	if err != nil {
		return err
	}
	pages := cliCtx.Uint64(pagesFlag.Name)
	if pages == 0 {
		return errors.New("--pages must be > 0")
	}
	pageSize := cliCtx.Int(pageSizeFlag.Name)
	innerPct := uint64(cliCtx.Int(innerFlag.Name))
	readPct := cliCtx.Int(readsFlag.Name)
	workers := max(cliCtx.Int(workersFlag.Name), 1)
	seed := cliCtx.Uint64(seedFlag.Name)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	// ---- Page store ----
	store, cleanup, err := openStore(cliCtx.String(storeFlag.Name), cliCtx.String(dirFlag.Name), pageSize)
	if err != nil {
		return err
	}
	defer cleanup()

	// ---- Metrics ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "pagecache", "bench", prometheus.Labels{"policy": string(kind)})
	if addr := cliCtx.String(metricsFlag.Name); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			logger.WithField("addr", addr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server")
			}
		}()
		defer srv.Close()
	}

	// ---- Cache, pool and manager ----
	typ := cache.TypeData
	if kind == policy.BTree {
		typ = cache.TypeBTree
	}
	c, err := policy.New[*pagestore.Page](kind, cache.Options{
		Name:            "bench.dbx",
		Type:            typ,
		Capacity:        cliCtx.Int(capacityFlag.Name),
		GrowthFactor:    cliCtx.Float64(growthFlag.Name),
		GrowthThreshold: cliCtx.Float64(thresholdFlag.Name),
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	mgr := manager.New(manager.Config{
		CacheSize:     budget,
		PageSize:      pageSize,
		CheckInterval: time.Second,
		Logger:        logger,
	})
	p := pool.New(c, func(_ context.Context, id uint64) (*pagestore.Page, error) {
		return pagestore.LoadPage(store, id, id%100 < innerPct)
	}, logger)
	p.Register(mgr)

	// ---- Load generation ----
	ctx, cancel := context.WithTimeout(cliCtx.Context, cliCtx.Duration(durationFlag.Name))
	defer cancel()

	var reads, writes, errs atomic.Uint64
	zipfS, zipfV := cliCtx.Float64(zipfSFlag.Name), cliCtx.Float64(zipfVFlag.Name)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := mgr.Run(ctx); !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// Each worker gets its own source; rand.Rand is not goroutine-safe.
			r := rand.New(rand.NewPCG(seed, uint64(w)*9973))
			zipf := rand.NewZipf(r, zipfS, zipfV, pages-1)
			buf := make([]byte, 8)
			for ctx.Err() == nil {
				id := zipf.Uint64()
				pg, release, err := p.Acquire(ctx, id)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					if errors.Is(err, cache.ErrCacheSaturated) {
						errs.Add(1)
						continue
					}
					return err
				}
				if r.IntN(100) < readPct {
					reads.Add(1)
					_, err = pg.Read(0, buf)
				} else {
					writes.Add(1)
					buf[0]++
					err = pg.Write(0, buf)
				}
				release()
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if _, err := p.Flush(); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	st := p.Stats()
	ops := reads.Load() + writes.Load()
	if err := p.Close(); err != nil && !errors.Is(err, pool.ErrClosed) {
		return err
	}

	out := cliCtx.App.Writer
	fmt.Fprintf(out, "policy=%s store=%s pages=%d workers=%d dur=%v seed=%d\n",
		kind, cliCtx.String(storeFlag.Name), pages, workers, elapsed.Round(time.Millisecond), seed)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  reads=%d  writes=%d  saturated=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads.Load(), writes.Load(), errs.Load())
	fmt.Fprintf(out, "hits=%d  fails=%d  hit-rate=%.2f%%\n", st.Hits, st.Fails, st.HitRatio()*100)
	fmt.Fprintf(out, "buffers=%d (initial %d, budget %d pages)  used=%d  evictions=%d  thrashing=%d\n",
		st.Buffers, cliCtx.Int(capacityFlag.Name), mgr.TotalPages(), st.Used, evictions(c), thrashing(c))
	return nil
}

func openStore(kind, dir string, pageSize int) (pagestore.Store, func(), error) {
	if kind == "memory" {
		s := pagestore.NewMemory(pageSize)
		return s, func() { _ = s.Close() }, nil
	}

	removeDir := func() {}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "pagebench-")
		if err != nil {
			return nil, nil, err
		}
		dir = tmp
		removeDir = func() { _ = os.RemoveAll(tmp) }
	}
	var (
		s   pagestore.Store
		err error
	)
	switch kind {
	case "file":
		s, err = pagestore.OpenFile(filepath.Join(dir, "bench.dbx"), pageSize)
	case "leveldb":
		s, err = pagestore.OpenLevelDB(filepath.Join(dir, "bench.ldb"), pageSize)
	default:
		err = fmt.Errorf("unknown store %q (use memory, file or leveldb)", kind)
	}
	if err != nil {
		removeDir()
		return nil, nil, err
	}
	return s, func() { _ = s.Close(); removeDir() }, nil
}

// evictions and thrashing read diagnostics the policies get from cache.Core.
func evictions(c any) uint64 {
	if e, ok := c.(interface{ Evictions() uint64 }); ok {
		return e.Evictions()
	}
	return 0
}

func thrashing(c any) int {
	if t, ok := c.(interface{ Thrashing() int }); ok {
		return t.Thrashing()
	}
	return 0
}
