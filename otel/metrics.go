// Package otel exports pulse scheduler activity as OpenTelemetry metrics.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueueMetrics translates scheduler queue activity into OpenTelemetry
// metrics. It records counters for enqueued tasks and drains, and a
// histogram of drain batch sizes, all attributed by queue name. It
// implements pulse.QueueObserver.
type QueueMetrics struct {
	tasksEnqueued metric.Int64Counter
	drains        metric.Int64Counter
	drainBatch    metric.Int64Histogram
}

// NewQueueMetrics creates a QueueMetrics that uses the given meter to create
// instruments for recording scheduler metrics.
func NewQueueMetrics(meter metric.Meter) (*QueueMetrics, error) {
	enq, err := meter.Int64Counter("pulse.queue.tasks",
		metric.WithDescription("Number of tasks enqueued per queue"),
	)
	if err != nil {
		return nil, err
	}

	drains, err := meter.Int64Counter("pulse.queue.drains",
		metric.WithDescription("Number of queue drains"),
	)
	if err != nil {
		return nil, err
	}

	batch, err := meter.Int64Histogram("pulse.queue.drain_batch",
		metric.WithDescription("Tasks run per queue drain"),
	)
	if err != nil {
		return nil, err
	}

	return &QueueMetrics{
		tasksEnqueued: enq,
		drains:        drains,
		drainBatch:    batch,
	}, nil
}

// TaskEnqueued increments the task counter for the queue.
func (m *QueueMetrics) TaskEnqueued(queue string) {
	m.tasksEnqueued.Add(context.Background(), 1, queueAttr(queue))
}

// DrainStarted increments the drain counter for the queue.
func (m *QueueMetrics) DrainStarted(queue string) {
	m.drains.Add(context.Background(), 1, queueAttr(queue))
}

// DrainFinished records the batch size of the finished drain.
func (m *QueueMetrics) DrainFinished(queue string, tasks int) {
	m.drainBatch.Record(context.Background(), int64(tasks), queueAttr(queue))
}

func queueAttr(queue string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("queue", queue))
}
