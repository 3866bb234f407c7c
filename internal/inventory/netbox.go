package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mirrorlab/internal/domain"
)

// NetBox fetches active Arista devices for a site through the NetBox
// REST API, filtered by the configured role allow-list. Pagination is
// followed transparently.
type NetBox struct {
	baseURL string
	token   string
	roles   []string
	client  *http.Client
}

// NewNetBox creates a NetBox inventory source
func NewNetBox(baseURL, token string, roles []string, timeout time.Duration) *NetBox {
	return &NetBox{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		roles:   roles,
		client:  &http.Client{Timeout: timeout},
	}
}

type nbPage struct {
	Count   int        `json:"count"`
	Next    *string    `json:"next"`
	Results []nbDevice `json:"results"`
}

type nbDevice struct {
	Name       string  `json:"name"`
	Role       *nbSlug `json:"role"`
	DeviceRole *nbSlug `json:"device_role"`
	Platform   *nbSlug `json:"platform"`
	PrimaryIP  *nbIP   `json:"primary_ip"`
}

type nbSlug struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type nbIP struct {
	Address string `json:"address"`
}

type nbSitePage struct {
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// Devices implements Source
func (n *NetBox) Devices(ctx context.Context, site string) ([]*domain.Device, error) {
	siteID, err := n.siteID(ctx, site)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("site_id", strconv.Itoa(siteID))
	q.Set("status", "active")
	q.Set("manufacturer", "arista")
	q.Set("limit", "200")
	for _, role := range n.roles {
		q.Add("role", role)
	}

	var devices []*domain.Device
	next := n.baseURL + "/api/dcim/devices/?" + q.Encode()
	for next != "" {
		var page nbPage
		if err := n.get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("fetch devices: %w", err)
		}
		for _, row := range page.Results {
			d := row.toDevice()
			if d.Addr == "" {
				continue
			}
			devices = append(devices, d)
		}
		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	return devices, nil
}

func (row nbDevice) toDevice() *domain.Device {
	addr := ""
	if row.PrimaryIP != nil {
		// NetBox returns the address with its prefix length
		addr = strings.SplitN(row.PrimaryIP.Address, "/", 2)[0]
	} else {
		slog.Warn("device has no primary IP, skipping", "device", row.Name)
	}

	role := ""
	switch {
	case row.Role != nil:
		role = row.Role.Slug
	case row.DeviceRole != nil:
		role = row.DeviceRole.Slug
	}

	d := domain.NewDevice(row.Name, addr, role)
	if row.Platform != nil {
		d.Platform = row.Platform.Slug
	}
	return d
}

// siteID resolves a site name (case-insensitive) to its NetBox ID
func (n *NetBox) siteID(ctx context.Context, name string) (int, error) {
	q := url.Values{}
	q.Set("name__ie", name)

	var page nbSitePage
	if err := n.get(ctx, n.baseURL+"/api/dcim/sites/?"+q.Encode(), &page); err != nil {
		return 0, fmt.Errorf("fetch site: %w", err)
	}
	if len(page.Results) == 0 {
		return 0, fmt.Errorf("site %q not found in NetBox", name)
	}
	return page.Results[0].ID, nil
}

func (n *NetBox) get(ctx context.Context, rawURL string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Token "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("netbox returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
