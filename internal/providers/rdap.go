package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/pkg/httpclient"
)

// RDAPClient resolves domain registration age via the RDAP protocol
// (the structured successor to WHOIS).
type RDAPClient struct {
	client   *httpclient.Client
	endpoint string
	now      func() time.Time
}

func NewRDAPClient(client *httpclient.Client, endpoint string) *RDAPClient {
	return &RDAPClient{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		now:      time.Now,
	}
}

type rdapResponse struct {
	Events []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
}

func (c *RDAPClient) CheckDomainAge(ctx context.Context, domain string) (security.DomainAgeResult, error) {
	unknown := security.DomainAgeResult{}

	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	if domain == "" {
		return unknown, nil
	}

	resp, err := c.client.Get(ctx, c.endpoint+"/domain/"+domain, nil, map[string]string{
		"Accept": "application/rdap+json",
	})
	if err != nil {
		return unknown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return unknown, fmt.Errorf("rdap: unexpected status %d", resp.StatusCode)
	}

	var body rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknown, err
	}

	for _, event := range body.Events {
		if event.EventAction != "registration" {
			continue
		}
		registered, err := time.Parse(time.RFC3339, event.EventDate)
		if err != nil {
			continue
		}
		age := int(c.now().UTC().Sub(registered).Hours() / 24)
		if age < 0 {
			age = 0
		}
		return security.DomainAgeResult{AgeDays: age, Known: true}, nil
	}

	return unknown, nil
}
