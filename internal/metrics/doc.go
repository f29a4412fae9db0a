// Package metrics records counters and timings for post operations.
//
// Components receive a Recorder through their constructors and default to
// NoopRecorder. The CLI swaps in a PrometheusRecorder when --metrics-file is
// set and writes the collected values once the command finishes, so a cron
// driven publish can be picked up by the node exporter textfile collector.
package metrics
