package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Currently open websocket connections",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "game_sessions_active",
			Help: "Active game sessions in the registry",
		},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Finished games by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections)
	prometheus.MustRegister(activeSessions)
	prometheus.MustRegister(gamesFinished)
}
