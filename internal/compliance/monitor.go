package compliance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/config"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/monitoring"
)

// Monitor scans the PHI access log over a time window, detects violations,
// and aggregates a compliance metrics snapshot. Report generation is
// request-scoped and read-only; if any collaborator is unreachable the whole
// report fails closed rather than returning a falsely-high score.
type Monitor struct {
	logs     authz.AccessLogStore
	roles    authz.RoleAssignmentStore
	registry authz.ClassificationRegistry
	config   *config.ComplianceConfig
	logger   *logger.Logger
}

// NewMonitor creates a new compliance monitor
func NewMonitor(logs authz.AccessLogStore, roles authz.RoleAssignmentStore, registry authz.ClassificationRegistry, cfg *config.ComplianceConfig, log *logger.Logger) *Monitor {
	return &Monitor{
		logs:     logs,
		roles:    roles,
		registry: registry,
		config:   cfg,
		logger:   log,
	}
}

// GenerateReport produces the violation list and metrics snapshot for
// [start, end]. The independent sub-computations run in parallel and are
// joined before aggregation; any failure aborts the whole report.
func (m *Monitor) GenerateReport(ctx context.Context, start, end time.Time) (*authz.ComplianceReport, error) {
	began := time.Now()

	if m.config.ReportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.config.ReportTimeout)*time.Second)
		defer cancel()
	}

	var (
		entries   []authz.AccessLogEntry
		retention retentionResult
		risks     []authz.RiskEntry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		entries, err = m.logs.QueryAccessLog(gctx, start, end)
		if err != nil {
			return fmt.Errorf("access log scan: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		retention, err = m.checkRetention(gctx)
		if err != nil {
			return fmt.Errorf("retention check: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		risks, err = m.assessRisks(gctx)
		if err != nil {
			return fmt.Errorf("risk assessment: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		m.logger.WithError(err).Error("Compliance report generation failed")
		return nil, authz.ErrDataUnavailable.WithCause(err)
	}

	violations := m.detectViolations(entries)
	violations = append(violations, m.retentionViolations(retention)...)
	metrics := m.aggregateMetrics(entries, violations, retention)

	report := &authz.ComplianceReport{
		ID:          uuid.New().String(),
		StartTime:   start,
		EndTime:     end,
		GeneratedAt: time.Now().UTC(),
		Violations:  violations,
		Risks:       risks,
		Metrics:     metrics,
	}

	for _, v := range violations {
		monitoring.RecordViolation(string(v.Type), string(v.Severity))
	}
	monitoring.RecordReport(time.Since(began), metrics.Overall)

	m.logger.Compliance(authz.AuditEventReportGenerated, "", map[string]interface{}{
		"report_id":      report.ID,
		"start":          start,
		"end":            end,
		"violations":     len(violations),
		"retention_gaps": len(retention.gaps),
		"overall":        metrics.Overall,
	})

	return report, nil
}

// detectViolations runs the per-entry and per-user detection heuristics over
// the window's log entries
func (m *Monitor) detectViolations(entries []authz.AccessLogEntry) []authz.Violation {
	violations := make([]authz.Violation, 0)
	now := time.Now().UTC()

	// Every unauthorized entry yields exactly one high-severity violation.
	for _, entry := range entries {
		if entry.Authorized {
			continue
		}
		violations = append(violations, authz.Violation{
			ID:          uuid.New().String(),
			Type:        authz.ViolationUnauthorizedAccess,
			Severity:    authz.SeverityHigh,
			Description: fmt.Sprintf("Unauthorized %s access to patient record by user %s", entry.AccessType, entry.UserID),
			UserID:      entry.UserID,
			ResourceID:  entry.PatientID,
			DetectedAt:  now,
		})
	}

	// One violation per user whose access count exceeds the threshold.
	// The boundary is exclusive: exactly threshold accesses is acceptable.
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.UserID]++
	}

	users := make([]string, 0, len(counts))
	for userID := range counts {
		users = append(users, userID)
	}
	sort.Strings(users)

	for _, userID := range users {
		if counts[userID] <= m.config.ExcessiveAccessThreshold {
			continue
		}
		violations = append(violations, authz.Violation{
			ID:          uuid.New().String(),
			Type:        authz.ViolationExcessiveAccess,
			Severity:    authz.SeverityMedium,
			Description: fmt.Sprintf("User %s accessed %d records in the window (threshold %d)", userID, counts[userID], m.config.ExcessiveAccessThreshold),
			UserID:      userID,
			ResourceID:  "multiple",
			DetectedAt:  now,
		})
	}

	return violations
}

// aggregateMetrics computes the four sub-scores and their mean, each clamped
// to [0,100]
func (m *Monitor) aggregateMetrics(entries []authz.AccessLogEntry, violations []authz.Violation, retention retentionResult) authz.ComplianceMetrics {
	hipaa := clampScore(100 - 10*float64(len(violations)))

	totalAccesses := len(entries)
	unauthorized := 0
	for _, entry := range entries {
		if !entry.Authorized {
			unauthorized++
		}
	}

	// Vacuous window: nothing was accessed, so nothing was mishandled.
	accessControls := 100.0
	if totalAccesses > 0 {
		accessControls = clampScore(100 * float64(totalAccesses-unauthorized) / float64(totalAccesses))
	}

	dataRetention := 100.0
	if retention.total > 0 {
		dataRetention = clampScore(100 * float64(retention.compliant) / float64(retention.total))
	}

	// Presence heuristic: any logging in the window scores full marks, an
	// empty trail scores the fixed baseline. An approximation, not a
	// completeness measure.
	auditTrails := float64(authz.DefaultAuditTrailBaseline)
	if totalAccesses > 0 {
		auditTrails = 100.0
	}

	overall := clampScore((hipaa + dataRetention + accessControls + auditTrails) / 4)

	return authz.ComplianceMetrics{
		HIPAACompliance: hipaa,
		DataRetention:   dataRetention,
		AccessControls:  accessControls,
		AuditTrails:     auditTrails,
		Overall:         overall,
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
