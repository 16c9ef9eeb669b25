// Package task manages background job queuing, processing, and lifecycle.
//
// A TaskRunner records every submitted Task in a TaskStore journal, hands it
// to a bounded TaskQueue and lets a fixed WorkerPool execute it, so the
// simulated answer generation never blocks HTTP request handling. With a
// durable journal the runner also re-queues unfinished work after a restart.
package task
