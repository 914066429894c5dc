package security

// newDomainAgeDays is the registration age below which a plaintext-only
// destination is treated with caution.
const newDomainAgeDays = 30

// TierFor derives the overall risk tier from the three sub-check results.
// Pure function: identical inputs always yield the identical tier. Unknown
// sub-results carry no weight on their own; only positive negative signals
// (malicious reputation, invalid certificate, plaintext on a brand-new
// domain) downgrade the tier.
func TierFor(reputation ReputationStatus, certificate CertificateStatus, ageDays int, ageKnown bool) Tier {
	if reputation == ReputationMalicious {
		return TierDanger
	}
	if reputation == ReputationSuspicious || certificate == CertInvalid {
		return TierCaution
	}
	if certificate == CertAbsent && ageKnown && ageDays < newDomainAgeDays {
		return TierCaution
	}
	return TierSafe
}
