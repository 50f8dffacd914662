// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// ConfessionsCreated counts confessions submitted per college and category.
	ConfessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_confessions_created_total",
		Help: "Total number of confessions submitted",
	}, []string{"college", "category"})

	// ModerationDecisions counts approve/reject decisions per content type.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_moderation_decisions_total",
		Help: "Total moderation decisions by content type and outcome",
	}, []string{"content_type", "decision"})

	// QuotaDenied counts confession submissions rejected by the daily quota.
	QuotaDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campuswall_quota_denied_total",
		Help: "Total confession submissions denied by the daily limit",
	})

	// LikeToggles counts like operations by resulting action.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_like_toggles_total",
		Help: "Total like toggle operations by resulting action",
	}, []string{"action"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campuswall_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketRoomConnections is the gauge of connections per chat room.
	WebSocketRoomConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "campuswall_websocket_room_connections",
		Help: "Number of WebSocket connections per chat room",
	}, []string{"room_id"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campuswall_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// MessageThroughput counts chat events processed per room and type.
	MessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_message_throughput_total",
		Help: "Total number of chat events processed",
	}, []string{"room_id", "message_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuswall_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RoomMetrics tracks WebSocket room and connection counts.
type RoomMetrics struct {
	roomCounts map[string]int
}

// NewRoomMetrics returns a new RoomMetrics instance.
func NewRoomMetrics() *RoomMetrics {
	return &RoomMetrics{
		roomCounts: make(map[string]int),
	}
}

// IncrementRoom increments the connection count for the room.
func (m *RoomMetrics) IncrementRoom(roomID string) {
	m.roomCounts[roomID]++
	WebSocketRoomConnections.WithLabelValues(roomID).Inc()
	WebSocketConnectionsTotal.Inc()
}

// DecrementRoom decrements the connection count for the room.
func (m *RoomMetrics) DecrementRoom(roomID string) {
	if m.roomCounts[roomID] > 0 {
		m.roomCounts[roomID]--
	}
	WebSocketRoomConnections.WithLabelValues(roomID).Dec()
	WebSocketConnectionsTotal.Dec()
}

// GetRoomCount returns the current connection count for the room.
func (m *RoomMetrics) GetRoomCount(roomID string) int {
	return m.roomCounts[roomID]
}

// RecordMessage increments message throughput counters for the room and type.
func (*RoomMetrics) RecordMessage(roomID, messageType string) {
	MessageThroughput.WithLabelValues(roomID, messageType).Inc()
}
