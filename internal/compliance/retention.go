package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/config"
)

// accessLogTable is the one monitored table this core can inspect directly;
// other tables belong to domain collaborators and are judged on configuration
// alone.
const accessLogTable = "access_logs"

// StaticRegistry implements authz.ClassificationRegistry from configuration
type StaticRegistry struct {
	classifications []authz.DataClassification
}

// NewStaticRegistry builds the registry from the compliance configuration
func NewStaticRegistry(cfg *config.ComplianceConfig) *StaticRegistry {
	classifications := make([]authz.DataClassification, 0, len(cfg.Classifications))
	for _, c := range cfg.Classifications {
		classifications = append(classifications, authz.DataClassification{
			Table:               c.Table,
			Field:               c.Field,
			Classification:      c.Classification,
			RetentionPeriodDays: c.RetentionPeriodDays,
			EncryptionRequired:  c.EncryptionRequired,
		})
	}
	return &StaticRegistry{classifications: classifications}
}

// Classifications returns the monitored data classifications
func (r *StaticRegistry) Classifications() []authz.DataClassification {
	return r.classifications
}

// retentionGap describes one classification that failed the retention check
type retentionGap struct {
	table       string
	description string
}

// retentionResult summarizes the retention check across all monitored
// classifications
type retentionResult struct {
	total     int
	compliant int
	gaps      []retentionGap
}

// checkRetention evaluates each monitored classification. A classification is
// compliant when it has a retention period configured and, where this core
// can see the underlying table, no records older than that period remain.
func (m *Monitor) checkRetention(ctx context.Context) (retentionResult, error) {
	result := retentionResult{}

	for _, c := range m.registry.Classifications() {
		result.total++

		if c.RetentionPeriodDays <= 0 {
			result.gaps = append(result.gaps, retentionGap{
				table:       c.Table,
				description: fmt.Sprintf("%s.%s has no retention period configured", c.Table, c.Field),
			})
			continue
		}

		if c.Table == accessLogTable {
			cutoff := time.Now().UTC().AddDate(0, 0, -c.RetentionPeriodDays)
			stale, err := m.logs.CountEntriesBefore(ctx, cutoff)
			if err != nil {
				return retentionResult{}, fmt.Errorf("failed to count stale entries for %s: %w", c.Table, err)
			}
			if stale > 0 {
				result.gaps = append(result.gaps, retentionGap{
					table:       c.Table,
					description: fmt.Sprintf("%s retains %d records past the %d-day period", c.Table, stale, c.RetentionPeriodDays),
				})
				continue
			}
		}

		result.compliant++
	}

	return result, nil
}

// retentionViolations turns each retention gap into a low-severity violation
// so gaps appear in the report alongside the access-log findings
func (m *Monitor) retentionViolations(result retentionResult) []authz.Violation {
	violations := make([]authz.Violation, 0, len(result.gaps))
	now := time.Now().UTC()

	for _, gap := range result.gaps {
		violations = append(violations, authz.Violation{
			ID:          uuid.New().String(),
			Type:        authz.ViolationRetentionGap,
			Severity:    authz.SeverityLow,
			Description: gap.description,
			ResourceID:  gap.table,
			DetectedAt:  now,
		})
	}

	return violations
}
