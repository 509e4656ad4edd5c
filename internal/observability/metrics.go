package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCast counts vote attempts by choice and whether they changed the tally.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotorflop_votes_cast_total",
		Help: "Total number of votes by choice and outcome",
	}, []string{"choice", "applied"})

	// VoteFailures counts votes rejected because the store was unavailable.
	VoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotorflop_vote_store_failures_total",
		Help: "Total number of votes not applied because the store failed",
	})

	// FeedCandidates counts posts considered for feeds, by outcome.
	FeedCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotorflop_feed_candidates_total",
		Help: "Feed candidates by outcome (shown, hidden, voted)",
	}, []string{"outcome"})

	// GraphCacheLookups counts viewer graph cache lookups by result.
	GraphCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotorflop_graph_cache_lookups_total",
		Help: "Viewer relationship graph cache lookups by result (hit, miss)",
	}, []string{"result"})

	// EventsPublished counts domain events by subject and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotorflop_events_published_total",
		Help: "Domain events published by subject and outcome",
	}, []string{"subject", "outcome"})

	// LiveConnections is the number of open message websockets.
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotorflop_live_connections",
		Help: "Open direct-message websocket connections",
	})

	// LiveDrops counts frames dropped for slow or closed websocket clients.
	LiveDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotorflop_live_frames_dropped_total",
		Help: "Websocket frames dropped by reason (full, closed)",
	}, []string{"reason"})
)
