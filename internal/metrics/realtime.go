package metrics

// ConnectionOpened increments the open realtime connection gauge
func (m *Metrics) ConnectionOpened() {
	m.safeExecute("ConnectionOpened", func() {
		m.RealtimeConnections.Inc()
	})
}

// ConnectionClosed decrements the open realtime connection gauge
func (m *Metrics) ConnectionClosed() {
	m.safeExecute("ConnectionClosed", func() {
		m.RealtimeConnections.Dec()
	})
}

// RecordBroadcast counts one board-update fan-out
func (m *Metrics) RecordBroadcast(tag string) {
	m.safeExecute("RecordBroadcast", func() {
		if tag == "" {
			tag = "unknown"
		}
		m.RealtimeBroadcastsTotal.WithLabelValues(tag).Inc()
	})
}
