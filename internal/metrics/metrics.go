package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdown_games_started_total",
			Help: "Games created, by mode (free or daily)",
		},
		[]string{"mode"},
	)
	CardFlips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdown_card_flips_total",
			Help: "Card selections applied, by outcome",
		},
		[]string{"outcome"},
	)
	GamesWon = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdown_games_won_total",
			Help: "Games fully matched, by mode",
		},
		[]string{"mode"},
	)
	WatchSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairdown_watch_subscribers",
			Help: "Currently connected snapshot watchers",
		},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(CardFlips)
	prometheus.MustRegister(GamesWon)
	prometheus.MustRegister(WatchSubscribers)
}
