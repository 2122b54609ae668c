package domain

import (
	"fmt"
	"strings"
)

type ComplianceMode string

const (
	ComplianceStandard ComplianceMode = "STANDARD"
	ComplianceHIPAA    ComplianceMode = "HIPAA"
	ComplianceGDPR     ComplianceMode = "GDPR"
	ComplianceSOC2     ComplianceMode = "SOC2"
)

// CompliancePolicy is the fixed flag set a compliance mode expands to.
type CompliancePolicy struct {
	EncryptionRequired bool `json:"encryptionRequired"`
	AuditRequired      bool `json:"auditRequired"`
	RetentionDays      int  `json:"retentionDays"`
	ConsentRequired    bool `json:"consentRequired"`
	MFARequired        bool `json:"mfaRequired"`
}

var compliancePresets = map[ComplianceMode]CompliancePolicy{
	ComplianceStandard: {RetentionDays: 30},
	ComplianceHIPAA: {
		EncryptionRequired: true,
		AuditRequired:      true,
		RetentionDays:      2190,
		ConsentRequired:    true,
		MFARequired:        true,
	},
	ComplianceGDPR: {
		EncryptionRequired: true,
		AuditRequired:      true,
		RetentionDays:      30,
		ConsentRequired:    true,
	},
	ComplianceSOC2: {
		EncryptionRequired: true,
		AuditRequired:      true,
		RetentionDays:      365,
		MFARequired:        true,
	},
}

func ParseComplianceMode(s string) (ComplianceMode, error) {
	m := ComplianceMode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := compliancePresets[m]; !ok {
		return "", fmt.Errorf("unknown compliance mode %q", s)
	}
	return m, nil
}

// PresetFor falls back to the STANDARD preset for unknown modes.
func PresetFor(m ComplianceMode) CompliancePolicy {
	if p, ok := compliancePresets[m]; ok {
		return p
	}
	return compliancePresets[ComplianceStandard]
}
