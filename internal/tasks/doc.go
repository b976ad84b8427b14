// Package tasks runs background work for saved links.
//
// # Dispatch
//
// [Dispatcher] delivers links to the n8n webhooks. [Dispatcher.Dispatch] marks a link as
// sent and publishes a [Job] to a [Queue]; [Dispatcher.Run] consumes jobs with a pool of
// workers. Each job is retried with exponential backoff on transport errors, 429 and 5xx
// answers, then the link is left processed (HTTP 200) or failed (anything else).
//
// Queues:
//   - [MemoryQueue] : buffered channel for a single process
//   - [AMQPQueue] : durable RabbitMQ queue shared by `serve` and `worker`
//
// A [Deduper] (memory or Redis) keeps the same link from being queued twice for one use.
//
// # Export
//
// [ExportByStatus] writes one file per status and a manifest using a small worker pool.
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Updates use select with
// default so a slow reader never blocks a worker.
package tasks
