// Package metrics exposes Prometheus collectors for the SDK's outbound API
// traffic, event delivery and in-app pipeline decisions.
//
// Collectors are created per client and registered by the host on a
// registry of its choice; nothing is registered globally. A nil *Metrics is
// valid and records nothing, so components accept it unconditionally.
//
//	m := metrics.New("myapp")
//	if err := m.Register(prometheus.DefaultRegisterer); err != nil { ... }
//	client, err := parcelvoy.New(cfg, parcelvoy.WithMetrics(m))
package metrics
