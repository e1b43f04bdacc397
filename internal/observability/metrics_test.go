package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheus(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/attempts/:id/submit", "200", 30*time.Millisecond)
	m.ObserveWriteOperation("learning.submit_attempt", "success", 5*time.Millisecond)
	m.ObserveQuizSubmission("final", true, 85)
	m.IncCertificateIssued()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`lms_api_requests_total{method="POST",route="/api/attempts/:id/submit",status="200"} 1.000000`,
		`lms_write_operations_total{op="learning.submit_attempt",status="success"} 1.000000`,
		`lms_quiz_submissions_total{quiz_type="final",outcome="passed"} 1.000000`,
		`lms_quiz_score_percent_bucket{quiz_type="final",le="90"} 1`,
		`lms_quiz_score_percent_bucket{quiz_type="final",le="80"} 0`,
		`lms_certificates_issued_total 1.000000`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncWriteConflict("op")
	m.AddAbandonedAttempts(2)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}
