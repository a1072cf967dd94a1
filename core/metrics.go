package core

import (
	"context"
	"fmt"
	"strings"
)

const metricPrefix = "custody."

// taggedFields are the operation fields copied onto metric tags. Amounts and
// accounts stay out of tags to keep cardinality bounded.
var taggedFields = []string{"role", "component"}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func metricName(operation string, suffix string) string {
	return metricPrefix + operation + "." + suffix
}

func operationTags(operation string, status string, fields map[string]any, err error) map[string]string {
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range taggedFields {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
			tags[key] = text
		}
	}
	if kind := ErrorKindOf(err); kind != ErrorKindNone {
		tags["error_kind"] = string(kind)
	}
	return tags
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
