// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command storanet runs a single storanet node: the request pipeline
// (chunk store, register CRDT, spend validator) behind an HTTP metrics
// endpoint. The overlay it joins is the in-memory test mesh (overlay.Mesh)
// rather than a real DHT transport, which is an external collaborator per
// spec; swapping in a real one only requires satisfying overlay.Overlay.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/config"
	"github.com/luxfi/storanet/events"
	"github.com/luxfi/storanet/metrics"
	"github.com/luxfi/storanet/node"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
)

func main() {
	var (
		addr             = flag.String("addr", ":8080", "HTTP address to serve /metrics and /status on")
		closeGroupSize   = flag.Int("k", config.DefaultCloseGroupSize, "close group size (K)")
		peerTimeout      = flag.Duration("peer-timeout", config.DefaultPeerTimeout, "per-peer request deadline")
		eventBusCapacity = flag.Int("event-bus-capacity", config.DefaultEventBusCapacity, "per-subscriber event bus buffer size")
		namespace        = flag.String("metrics-namespace", "storanet", "prometheus metric namespace")
	)
	flag.Parse()

	cfg, err := config.NewBuilder().
		WithCloseGroupSize(*closeGroupSize).
		WithPeerTimeout(*peerTimeout).
		WithEventBusCapacity(*eventBusCapacity).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storanet: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *addr, *namespace); err != nil {
		fmt.Fprintf(os.Stderr, "storanet: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, addr, namespace string) error {
	reg := prometheus.NewRegistry()
	metricsSet, err := metrics.NewSet(namespace, reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	mesh := overlay.NewMesh()
	// GenerateTestNodeID stands in for a real peer identity here because
	// the mesh itself is the in-memory overlay, not a real DHT transport.
	self := luxids.GenerateTestNodeID()
	ov := mesh.ViewAs(self)
	cg := closegroup.New(ov, cfg.CloseGroupSize, cfg.PeerTimeout)
	cg.Metrics = metricsSet
	bus := events.NewBus(cfg.EventBusCapacity)

	n := node.New(ov, cg, bus, metricsSet, nil)
	mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
		return n.Handle(ctx, req)
	})
	return serve(n, reg, addr)
}

func serve(n *node.Node, reg *prometheus.Registry, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go n.RunOverlayEvents(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		families, err := reg.Gather()
		if err != nil {
			families = []*dto.MetricFamily{}
		}
		fmt.Fprintf(w, "storanet: ok\ndouble-spends-observed: %d\nevents-dropped: %d\nmetric-families: %d\n",
			len(n.Storage.DoubleSpendLog()), n.Bus.DroppedCount(), len(families))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		n.Log.Info("storanet listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
