package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/pkg/httpclient"
)

// Threat types that mark a destination outright malicious; everything else
// reported by the provider counts as suspicious.
var maliciousThreats = map[string]bool{
	"MALWARE":            true,
	"SOCIAL_ENGINEERING": true,
}

// SafeBrowsing checks domain reputation against the Google Safe Browsing v4
// threatMatches API. Without an API key every lookup reports unknown.
type SafeBrowsing struct {
	client   *httpclient.Client
	endpoint string
	apiKey   string
}

func NewSafeBrowsing(client *httpclient.Client, endpoint, apiKey string) *SafeBrowsing {
	return &SafeBrowsing{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type threatMatchesRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string            `json:"threatTypes"`
		PlatformTypes    []string            `json:"platformTypes"`
		ThreatEntryTypes []string            `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatMatchesResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

func (s *SafeBrowsing) CheckReputation(ctx context.Context, domain string) (security.ReputationResult, error) {
	unknown := security.ReputationResult{Status: security.ReputationUnknown}

	if s.apiKey == "" {
		return unknown, nil
	}

	payload := threatMatchesRequest{}
	payload.Client.ClientID = "qrsecure"
	payload.Client.ClientVersion = "1.0.0"
	payload.ThreatInfo.ThreatTypes = []string{
		"MALWARE",
		"SOCIAL_ENGINEERING",
		"UNWANTED_SOFTWARE",
		"POTENTIALLY_HARMFUL_APPLICATION",
	}
	payload.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	payload.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	payload.ThreatInfo.ThreatEntries = []map[string]string{
		{"url": "http://" + domain + "/"},
	}

	resp, err := s.client.Post(ctx, s.endpoint+"?key="+s.apiKey, payload, nil)
	if err != nil {
		return unknown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return unknown, fmt.Errorf("safe browsing: unexpected status %d", resp.StatusCode)
	}

	var body threatMatchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknown, err
	}

	if len(body.Matches) == 0 {
		return security.ReputationResult{Status: security.ReputationClean}, nil
	}

	result := security.ReputationResult{Status: security.ReputationSuspicious}
	for _, match := range body.Matches {
		result.Threats = append(result.Threats, match.ThreatType)
		if maliciousThreats[match.ThreatType] {
			result.Status = security.ReputationMalicious
		}
	}

	return result, nil
}
