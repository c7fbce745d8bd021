package repository

import (
	"time"

	"pdv_payments/internal/domain/entities"
)

// errorDetailRecord is the stored form of entities.ErrorDetail; the wrapped cause is
// process-local and never persisted.
type errorDetailRecord struct {
	Kind      string `dynamodbav:"kind" json:"kind"`
	Message   string `dynamodbav:"message" json:"message"`
	Retryable bool   `dynamodbav:"retryable" json:"retryable"`
	Code      string `dynamodbav:"code,omitempty" json:"code,omitempty"`
}

func toErrorDetailRecord(d *entities.ErrorDetail) *errorDetailRecord {
	if d == nil {
		return nil
	}
	return &errorDetailRecord{Kind: string(d.Kind), Message: d.Message, Retryable: d.Retryable, Code: d.Code}
}

func fromErrorDetailRecord(r *errorDetailRecord) *entities.ErrorDetail {
	if r == nil {
		return nil
	}
	return &entities.ErrorDetail{Kind: entities.ErrorKind(r.Kind), Message: r.Message, Retryable: r.Retryable, Code: r.Code}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	return &t
}
