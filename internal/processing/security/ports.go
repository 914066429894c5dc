package security

import (
	"context"
	"time"
)

type ReputationResult struct {
	Status  ReputationStatus
	Threats []string
}

// ReputationChecker consults an external reputation provider. Errors are
// absorbed by the engine as ReputationUnknown.
type ReputationChecker interface {
	CheckReputation(ctx context.Context, domain string) (ReputationResult, error)
}

type CertificateResult struct {
	Status CertificateStatus
	Issuer string
	Expiry time.Time
}

// CertificateChecker attempts a TLS handshake against the domain.
type CertificateChecker interface {
	CheckCertificate(ctx context.Context, domain string) (CertificateResult, error)
}

type DomainAgeResult struct {
	AgeDays int
	Known   bool
}

// DomainAgeChecker looks up the domain's registration age.
type DomainAgeChecker interface {
	CheckDomainAge(ctx context.Context, domain string) (DomainAgeResult, error)
}

// Verifier produces a verdict for a domain. Implemented by Engine and by
// Cache wrapping an Engine.
type Verifier interface {
	Verify(ctx context.Context, domain string) *Verdict
}
