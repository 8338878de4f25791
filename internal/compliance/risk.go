package compliance

import (
	"context"
	"fmt"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
)

// administrativeRoles are the roles counted against the admin ceiling
var administrativeRoles = []authz.Role{
	authz.RolePracticeAdministrator,
	authz.RoleClinicalAdministrator,
}

// assessRisks runs the structural checks that are independent of the log
// window: administrative-role sprawl and missing security configuration.
// Each finding is a risk entry, not a violation.
func (m *Monitor) assessRisks(ctx context.Context) ([]authz.RiskEntry, error) {
	risks := make([]authz.RiskEntry, 0)

	adminCount := 0
	for _, role := range administrativeRoles {
		count, err := m.roles.CountActiveUsersWithRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to count users with role %s: %w", role, err)
		}
		adminCount += count
	}

	if adminCount > m.config.AdminCountCeiling {
		risks = append(risks, authz.RiskEntry{
			Category: "access_control",
			Severity: authz.SeverityHigh,
			Description: fmt.Sprintf("%d users hold administrative roles, exceeding the ceiling of %d",
				adminCount, m.config.AdminCountCeiling),
		})
	}

	if !m.config.AuditLoggingEnabled {
		risks = append(risks, authz.RiskEntry{
			Category:    "audit",
			Severity:    authz.SeverityCritical,
			Description: "PHI audit logging is disabled",
		})
	}

	encryptedPHI := false
	hasPHI := false
	for _, c := range m.registry.Classifications() {
		if c.Classification != "phi" {
			continue
		}
		hasPHI = true
		if c.EncryptionRequired {
			encryptedPHI = true
		}
	}
	if hasPHI && !encryptedPHI {
		risks = append(risks, authz.RiskEntry{
			Category:    "encryption",
			Severity:    authz.SeverityMedium,
			Description: "No PHI classification requires encryption at rest",
		})
	}

	return risks, nil
}
