package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Authorization decision metrics
	authzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of permission evaluations",
		},
		[]string{"category", "action", "decision"},
	)

	authzDecisionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Duration of permission evaluations in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		},
		[]string{"category"},
	)

	// Role mutation metrics
	roleMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_role_mutations_total",
			Help: "Total number of role assignment mutations",
		},
		[]string{"operation", "outcome"},
	)

	// Compliance monitoring metrics
	violationsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_violations_detected_total",
			Help: "Total number of compliance violations detected",
		},
		[]string{"type", "severity"},
	)

	complianceReportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compliance_report_duration_seconds",
			Help:    "Duration of compliance report generation in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
	)

	complianceOverallScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "compliance_overall_score",
			Help: "Overall compliance score from the most recent report",
		},
	)
)

func init() {
	prometheus.MustRegister(
		authzDecisionsTotal,
		authzDecisionDuration,
		roleMutationsTotal,
		violationsDetectedTotal,
		complianceReportDuration,
		complianceOverallScore,
	)
}

// RecordDecision records one permission evaluation outcome
func RecordDecision(category, action string, allowed bool, duration time.Duration) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	authzDecisionsTotal.WithLabelValues(category, action, decision).Inc()
	authzDecisionDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordRoleMutation records a role assignment mutation outcome
func RecordRoleMutation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	roleMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordViolation records one detected compliance violation
func RecordViolation(violationType, severity string) {
	violationsDetectedTotal.WithLabelValues(violationType, severity).Inc()
}

// RecordReport records the duration and overall score of a generated report
func RecordReport(duration time.Duration, overallScore float64) {
	complianceReportDuration.Observe(duration.Seconds())
	complianceOverallScore.Set(overallScore)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
