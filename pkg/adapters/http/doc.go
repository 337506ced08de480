/*
Package http serves the records of an experiment over HTTP.

A Server reads back a ports.HistorySource (the memory, file or redis emitter)
and exposes it as JSON:

	GET /healthz        liveness check
	GET /configuration  the configuration record
	GET /history        every history record in emission order
	GET /timeseries     history as aligned series (?format=paths for flat keys)
	GET /metrics        Prometheus metrics, when a gatherer is configured
	GET /events         server-sent events for records emitted after connecting

The StreamManager behind /events is itself a ports.Emitter; tee it next to the
stored emitter so live clients see each record as the experiment produces it.
*/
package http
