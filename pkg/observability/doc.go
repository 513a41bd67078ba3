/*
Package observability turns the lifecycle events of a run into Prometheus metrics
and structured log records.

Both are exposed as domain.LifecycleHooks, so they can be merged and handed to
workers and the aggregator:

	m, _ := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
