// Package metrics provides operational counters for generation and reroll.
//
// Counters live in a private Prometheus registry. A CLI process is short
// lived, so the registry is written to a node-exporter textfile on exit
// instead of being scraped.
package metrics
