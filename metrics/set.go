// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/storanet/utils/wrappers"
)

// Set bundles the counters emitted by storage, the spend validator, and the
// close-group client. A nil *Set is valid everywhere it's accepted; every
// method on it is a no-op, so components can be built without a registry
// in unit tests.
type Set struct {
	ChunksStored          prometheus.Counter
	RegistersCreated      prometheus.Counter
	RegistersEdited       prometheus.Counter
	SpendsStored          prometheus.Counter
	DoubleSpendsDetected  prometheus.Counter
	CloseGroupFanoutOK    *prometheus.CounterVec
	CloseGroupFanoutErr   *prometheus.CounterVec
	CloseGroupFanoutStall *prometheus.CounterVec
	FanoutLatency         Averager
}

// NewSet constructs and registers a Set against reg. namespace prefixes
// every metric name (e.g. "storanet").
func NewSet(namespace string, reg prometheus.Registerer) (*Set, error) {
	s := &Set{
		ChunksStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_stored_total",
			Help:      "Number of chunks accepted by the local chunk store.",
		}),
		RegistersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registers_created_total",
			Help:      "Number of register Create commands applied locally.",
		}),
		RegistersEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registers_edited_total",
			Help:      "Number of register Edit commands applied locally.",
		}),
		SpendsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spends_stored_total",
			Help:      "Number of signed spends accepted by the local spend store.",
		}),
		DoubleSpendsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "double_spends_detected_total",
			Help:      "Number of double-spend attempts observed, locally or reported by peers.",
		}),
		CloseGroupFanoutOK: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "close_group_fanout_ok_total",
			Help:      "Successful per-peer responses, by query kind.",
		}, []string{"kind"}),
		CloseGroupFanoutErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "close_group_fanout_err_total",
			Help:      "Errored per-peer responses, by query kind.",
		}, []string{"kind"}),
		CloseGroupFanoutStall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "close_group_fanout_timeout_total",
			Help:      "Timed-out per-peer responses, by query kind.",
		}, []string{"kind"}),
	}

	var errs wrappers.Errs
	errs.Add(reg.Register(s.ChunksStored))
	errs.Add(reg.Register(s.RegistersCreated))
	errs.Add(reg.Register(s.RegistersEdited))
	errs.Add(reg.Register(s.SpendsStored))
	errs.Add(reg.Register(s.DoubleSpendsDetected))
	errs.Add(reg.Register(s.CloseGroupFanoutOK))
	errs.Add(reg.Register(s.CloseGroupFanoutErr))
	errs.Add(reg.Register(s.CloseGroupFanoutStall))
	if errs.Errored() {
		return nil, errs.Err()
	}

	s.FanoutLatency = NewAveragerWithErrs("close_group_fanout_latency_seconds", "close-group fan-out latency", reg, &errs)
	if errs.Errored() {
		return nil, errs.Err()
	}

	return s, nil
}

func (s *Set) incChunksStored() {
	if s != nil {
		s.ChunksStored.Inc()
	}
}

func (s *Set) incRegistersCreated() {
	if s != nil {
		s.RegistersCreated.Inc()
	}
}

func (s *Set) incRegistersEdited() {
	if s != nil {
		s.RegistersEdited.Inc()
	}
}

func (s *Set) incSpendsStored() {
	if s != nil {
		s.SpendsStored.Inc()
	}
}

func (s *Set) incDoubleSpendsDetected() {
	if s != nil {
		s.DoubleSpendsDetected.Inc()
	}
}

// ObserveFanout records the outcome of one peer's response to a fan-out of
// the given query kind ("ok", "err", or "timeout").
func (s *Set) ObserveFanout(kind, outcome string) {
	if s == nil {
		return
	}
	switch outcome {
	case "ok":
		s.CloseGroupFanoutOK.WithLabelValues(kind).Inc()
	case "err":
		s.CloseGroupFanoutErr.WithLabelValues(kind).Inc()
	case "timeout":
		s.CloseGroupFanoutStall.WithLabelValues(kind).Inc()
	}
}

// IncChunksStored increments the chunk-store counter.
func (s *Set) IncChunksStored() { s.incChunksStored() }

// IncRegistersCreated increments the register-create counter.
func (s *Set) IncRegistersCreated() { s.incRegistersCreated() }

// IncRegistersEdited increments the register-edit counter.
func (s *Set) IncRegistersEdited() { s.incRegistersEdited() }

// IncSpendsStored increments the spend-store counter.
func (s *Set) IncSpendsStored() { s.incSpendsStored() }

// IncDoubleSpendsDetected increments the double-spend counter.
func (s *Set) IncDoubleSpendsDetected() { s.incDoubleSpendsDetected() }
