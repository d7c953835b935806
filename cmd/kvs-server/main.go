// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dreamsxin/kvstore"
	"github.com/dreamsxin/kvstore/engine"
	"github.com/dreamsxin/kvstore/server"
	"github.com/dreamsxin/kvstore/threadpool"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config mirrors kvs-server's command-line surface: listen address, which
// storage engine to use, and how many worker goroutines to run requests on.
// Argument parsing is explicitly out of scope for this module, so this is
// kept to the standard flag package rather than a richer CLI framework.
type Config struct {
	Addr       string
	Engine     string
	PoolKind   string
	Threads    int
	DataDir    string
	MetricsAddr string
}

func parseConfig(args []string) (Config, error) {
	fs := flag.NewFlagSet("kvs-server", flag.ContinueOnError)
	cfg := Config{}
	fs.StringVar(&cfg.Addr, "addr", "127.0.0.1:4000", "IP:PORT to listen on")
	fs.StringVar(&cfg.Engine, "engine", "", "storage engine: kvs or bolt (default: kvs, or whatever engine already owns --data-dir)")
	fs.StringVar(&cfg.PoolKind, "pool", string(threadpool.KindSharedQueue), "thread pool: naive, shared-queue or work-stealing")
	fs.IntVar(&cfg.Threads, "threads", 4, "worker count for the thread pool")
	fs.StringVar(&cfg.DataDir, "data-dir", ".", "directory holding engine data")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func main() {
	logger := log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if err := run(os.Args[1:], logger); err != nil {
		level.Error(logger).Log("msg", "kvs-server exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string, logger log.Logger) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	engineName, err := resolveEngineName(cfg.DataDir, cfg.Engine)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	dataDir := filepath.Join(cfg.DataDir, "db."+string(engineName))

	var eng engine.Engine
	switch engineName {
	case engine.NameKVS:
		eng, err = engine.Open(dataDir, engine.Options{Logger: logger, Registry: reg})
	case engine.NameBolt:
		eng, err = engine.OpenBolt(dataDir, engine.Options{Logger: logger, Registry: reg})
	default:
		return fmt.Errorf("ENGINE-NAME is either %q or %q", engine.NameKVS, engine.NameBolt)
	}
	if err != nil {
		return err
	}
	defer eng.Close()

	pool, err := threadpool.New(threadpool.Kind(cfg.PoolKind), cfg.Threads, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	srv := server.New(ln, server.Config{Engine: eng, Pool: pool, Logger: logger, Registry: reg})
	level.Info(logger).Log("msg", "kvs-server listening", "addr", cfg.Addr, "engine", engineName, "pool", cfg.PoolKind)
	return srv.Serve()
}

// resolveEngineName implements the original kvs-server's engine-selection
// rule: an explicit flag wins unless it conflicts with a data directory
// already owned by a different engine, in which case starting up is
// refused (supplemented feature, spec §8 S6).
func resolveEngineName(dataDir, requested string) (engine.Name, error) {
	existing := detectExistingEngine(dataDir)

	if requested == "" {
		if existing != "" {
			return existing, nil
		}
		return engine.NameKVS, nil
	}

	want := engine.Name(requested)
	if want != engine.NameKVS && want != engine.NameBolt {
		return "", fmt.Errorf("ENGINE-NAME is either %q or %q", engine.NameKVS, engine.NameBolt)
	}
	if existing != "" && existing != want {
		return "", kvstore.ErrEngineMismatch
	}
	return want, nil
}

func detectExistingEngine(dataDir string) engine.Name {
	if _, err := os.Stat(filepath.Join(dataDir, "db."+string(engine.NameKVS))); err == nil {
		return engine.NameKVS
	}
	if _, err := os.Stat(filepath.Join(dataDir, "db."+string(engine.NameBolt))); err == nil {
		return engine.NameBolt
	}
	return ""
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		level.Error(logger).Log("msg", "metrics server exited", "err", err)
	}
}
