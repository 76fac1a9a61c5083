/*
Package observability provides tools for monitoring the keypad engine.

Metrics turns the engine lifecycle hooks into Prometheus counters, and
Combine lets several hook sets (metrics, debug logging, tests) observe the
same engine.
*/
package observability
