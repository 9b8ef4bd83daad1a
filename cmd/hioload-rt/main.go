// File: cmd/hioload-rt/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Command hioload-rt runs a checksum batch over generated items on the
// runtime's worker pool and prints a summary. With --metrics-addr set it
// keeps serving /metrics and /debug/state until interrupted.

package main

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-rt/control"
	"github.com/momentics/hioload-rt/facade"
)

var configFile string
var workers int
var items int
var debug bool
var metricsAddr string

var versionFlag bool
var version = "dev"
var commit = ""

func main() {
	pflag.StringVarP(&configFile, "config", "c", "", "config file path")
	pflag.IntVarP(&workers, "workers", "w", 0, "workers started per batch")
	pflag.IntVarP(&items, "items", "n", 0, "number of generated items")
	pflag.BoolVarP(&debug, "debug", "d", false, "set log level to DEBUG")
	pflag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "print version")
	pflag.Parse()

	if versionFlag {
		fmt.Println(version + "-" + commit)
		return
	}

	cfg, err := control.LoadConfig(configFile)
	if err != nil {
		log.WithError(err).Fatal("failed to read config")
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	rt, err := facade.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create runtime")
	}
	logger := rt.Logger().WithField("component", "main")
	logger.WithFields(log.Fields{
		"version":   version,
		"commit":    commit,
		"log-level": cfg.LogLevel,
	}).Info("hioload-rt bootstrap")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, rt); err != nil {
		logger.WithError(err).Error("run failed")
		rt.Shutdown()
		os.Exit(1)
	}
	rt.Shutdown()
}

// applyFlags overrides file values with flags given on the command line.
func applyFlags(cfg *control.Config) {
	flags := pflag.CommandLine
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("items") {
		cfg.Items = items
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
}

func run(ctx context.Context, rt *facade.Runtime) error {
	cfg := rt.Config()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newMux(rt),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			rt.Logger().WithField("address", cfg.MetricsAddr).Info("metrics server started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		sum, err := checksum(gctx, rt, cfg.Items)
		if err != nil {
			return err
		}
		fmt.Println(sum)
		return nil
	})
	return g.Wait()
}

func newMux(rt *facade.Runtime) http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", rt.Metrics().Handler()).Methods(http.MethodGet)
	router.HandleFunc("/debug/state", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rt.Debug().DumpState()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)
	return router
}

type summary struct {
	Items    int
	Failed   int
	Digest   uint64
	Duration time.Duration
}

func (s summary) String() string {
	return fmt.Sprintf("items=%d failed=%d digest=%016x duration=%s", s.Items, s.Failed, s.Digest, s.Duration)
}

// checksum hashes n generated items on the worker pool and folds the
// per-item digests in index order.
func checksum(ctx context.Context, rt *facade.Runtime, n int) (summary, error) {
	input := make([]string, n)
	for i := range input {
		input[i] = fmt.Sprintf("item-%08d", i)
	}

	start := time.Now()
	results, err := facade.RunBatch(ctx, rt, input, func(s string) (uint64, error) {
		h := sha256.Sum256([]byte(s))
		return binary.BigEndian.Uint64(h[:8]), nil
	})
	if err != nil {
		return summary{}, err
	}

	sum := summary{Items: len(results), Duration: time.Since(start)}
	for _, r := range results {
		if r.Err != nil {
			sum.Failed++
			continue
		}
		sum.Digest = sum.Digest*31 ^ r.Value
	}
	return sum, nil
}
