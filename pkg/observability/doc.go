/*
Package observability turns experiment lifecycle hooks into Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	exp, err := vivarium.New(processes, topology,
		vivarium.WithLifecycleHooks(metrics.Hooks()),
	)

Every series carries an experiment label so one registry can follow several
experiments.
*/
package observability
