package security

import (
	"context"
	"sync"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Engine runs the reputation, certificate and domain-age checks concurrently
// and combines them into a single verdict. Provider failures degrade to
// unknown sub-results; they are never surfaced to the caller.
type Engine struct {
	reputation  ReputationChecker
	certificate CertificateChecker
	domainAge   DomainAgeChecker

	checkTimeout time.Duration
	now          func() time.Time
}

func NewEngine(reputation ReputationChecker, certificate CertificateChecker, domainAge DomainAgeChecker, checkTimeout time.Duration) *Engine {
	if checkTimeout <= 0 {
		checkTimeout = 5 * time.Second
	}

	return &Engine{
		reputation:   reputation,
		certificate:  certificate,
		domainAge:    domainAge,
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
}

// Verify runs all sub-checks concurrently. Each check carries its own
// timeout, so total latency is bounded by the slowest check rather than the
// sum of all three.
func (e *Engine) Verify(ctx context.Context, domain string) *Verdict {
	verdict := &Verdict{
		Domain:      domain,
		Reputation:  ReputationUnknown,
		Certificate: CertUnknown,
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		checkCtx, cancel := context.WithTimeout(ctx, e.checkTimeout)
		defer cancel()

		res, err := e.reputation.CheckReputation(checkCtx, domain)
		if err != nil {
			logger.Debug("reputation check unavailable", zap.String("domain", domain), zap.Error(err))
			return
		}
		verdict.Reputation = res.Status
		verdict.Threats = res.Threats
	}()

	go func() {
		defer wg.Done()
		checkCtx, cancel := context.WithTimeout(ctx, e.checkTimeout)
		defer cancel()

		res, err := e.certificate.CheckCertificate(checkCtx, domain)
		if err != nil {
			logger.Debug("certificate check unavailable", zap.String("domain", domain), zap.Error(err))
			return
		}
		verdict.Certificate = res.Status
		verdict.CertIssuer = res.Issuer
		verdict.CertExpiry = res.Expiry
	}()

	go func() {
		defer wg.Done()
		checkCtx, cancel := context.WithTimeout(ctx, e.checkTimeout)
		defer cancel()

		res, err := e.domainAge.CheckDomainAge(checkCtx, domain)
		if err != nil {
			logger.Debug("domain age check unavailable", zap.String("domain", domain), zap.Error(err))
			return
		}
		verdict.AgeDays = res.AgeDays
		verdict.AgeKnown = res.Known
	}()

	wg.Wait()

	verdict.ComputedAt = e.now().UTC()
	verdict.Tier = TierFor(verdict.Reputation, verdict.Certificate, verdict.AgeDays, verdict.AgeKnown)

	return verdict
}
