package security

import "time"

// ReputationStatus is the outcome of the external reputation lookup.
type ReputationStatus string

const (
	ReputationClean      ReputationStatus = "clean"
	ReputationSuspicious ReputationStatus = "suspicious"
	ReputationMalicious  ReputationStatus = "malicious"
	ReputationUnknown    ReputationStatus = "unknown"
)

// CertificateStatus is the outcome of the TLS handshake check.
type CertificateStatus string

const (
	CertValid   CertificateStatus = "valid"
	CertInvalid CertificateStatus = "invalid"
	CertAbsent  CertificateStatus = "absent"
	CertUnknown CertificateStatus = "unknown"
)

// Tier is the overall risk classification.
type Tier string

const (
	TierSafe    Tier = "safe"
	TierCaution Tier = "caution"
	TierDanger  Tier = "danger"
)

// Verdict is the combined result of all security checks for one domain.
type Verdict struct {
	Domain string

	Reputation ReputationStatus
	Threats    []string

	Certificate CertificateStatus
	CertIssuer  string
	CertExpiry  time.Time

	AgeDays  int
	AgeKnown bool

	ComputedAt time.Time
	Tier       Tier
}
