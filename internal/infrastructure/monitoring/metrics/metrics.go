// Package metrics exposes prometheus instrumentation for the merge pipeline.
// A combinatorial run can produce thousands of structures; the optional
// /metrics listener lets long runs be watched while they execute.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the pipeline's collectors.  A nil *Set is valid and turns every
// recording method into a no-op, so domain code never branches on whether
// metrics are enabled.
type Set struct {
	structuresLoaded prometheus.Counter
	mergesTotal      prometheus.Counter
	matchesFound     prometheus.Counter
	rca4Rewrites     prometheus.Counter
	mergeDuration    prometheus.Histogram
}

// NewSet constructs the pipeline collectors and registers them with reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		structuresLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemscreen",
			Name:      "structures_loaded_total",
			Help:      "Structures read from input files, after enantiomer expansion.",
		}),
		mergesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemscreen",
			Name:      "merges_total",
			Help:      "Merged structures produced.",
		}),
		matchesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemscreen",
			Name:      "pattern_matches_total",
			Help:      "Atom-tuple matches found during pattern evaluation.",
		}),
		rca4Rewrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemscreen",
			Name:      "rca4_rewrites_total",
			Help:      "RCA4 bond annotations remapped after merges.",
		}),
		mergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chemscreen",
			Name:      "merge_duration_seconds",
			Help:      "Wall time per single structure merge.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	reg.MustRegister(s.structuresLoaded, s.mergesTotal, s.matchesFound,
		s.rca4Rewrites, s.mergeDuration)
	return s
}

// AddStructuresLoaded records n loaded structures.
func (s *Set) AddStructuresLoaded(n int) {
	if s == nil {
		return
	}
	s.structuresLoaded.Add(float64(n))
}

// IncMerges records one produced merge.
func (s *Set) IncMerges() {
	if s == nil {
		return
	}
	s.mergesTotal.Inc()
}

// AddMatches records n pattern matches.
func (s *Set) AddMatches(n int) {
	if s == nil {
		return
	}
	s.matchesFound.Add(float64(n))
}

// AddRCA4Rewrites records n remapped RCA4 annotation pairs.
func (s *Set) AddRCA4Rewrites(n int) {
	if s == nil {
		return
	}
	s.rca4Rewrites.Add(float64(n))
}

// ObserveMergeDuration records the wall time of one merge.
func (s *Set) ObserveMergeDuration(d time.Duration) {
	if s == nil {
		return
	}
	s.mergeDuration.Observe(d.Seconds())
}

// Handler returns the scrape handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
