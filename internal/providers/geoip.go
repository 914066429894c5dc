package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/pkg/httpclient"
)

// GeoIPClient resolves an IP to a location through an ip-api.com style JSON
// endpoint. Private, loopback and otherwise non-routable addresses short
// circuit to unknown without a network call.
type GeoIPClient struct {
	client   *httpclient.Client
	endpoint string
}

func NewGeoIPClient(client *httpclient.Client, endpoint string) *GeoIPClient {
	return &GeoIPClient{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

type geoIPResponse struct {
	Status      string `json:"status"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

func (c *GeoIPClient) Locate(ctx context.Context, ip string) (scans.Location, error) {
	if !isRoutableIP(ip) {
		return scans.Location{}, nil
	}

	resp, err := c.client.Get(ctx, c.endpoint+"/"+ip, nil, nil)
	if err != nil {
		return scans.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return scans.Location{}, fmt.Errorf("geoip: unexpected status %d", resp.StatusCode)
	}

	var body geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return scans.Location{}, err
	}

	if body.Status != "success" {
		return scans.Location{}, nil
	}

	return scans.Location{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		City:        body.City,
	}, nil
}

func isRoutableIP(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified() {
		return false
	}
	return true
}
