/*
Package observability provides the Prometheus instrumentation of the recorder.

It counts what the recording session keeps or rejects, what the replay
scheduler dispatches or skips, how long replay passes take and how the store
endpoint answers. Metrics are registered on an injected registry so tests and
embedders can keep them off the global default.
*/
package observability
