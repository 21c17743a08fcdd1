package services

import (
	"context"
	"time"
)

// Metrics is the part of the CloudWatch metrics client the services use.
type Metrics interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// recordCount sends a counter on a detached goroutine so requests never
// wait on CloudWatch.
func recordCount(m Metrics, metricName string, dimensions map[string]string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.RecordCount(ctx, metricName, dimensions)
	}()
}
