// Package messaging is a small broker-agnostic publish/consume layer.
//
// Two drivers exist: NATS for deployments and an in-process memory bus for
// local runs and tests. Handlers run under panic recovery and their errors
// decide whether the message is acked or nacked when auto-ack is enabled.
package messaging
