// Package validation checks user supplied configuration and flag values.
//
// Base URLs are validated against private IP ranges, cloud metadata
// endpoints and loopback hosts so that a token is never sent somewhere it
// should not go. Private hosts can be allowed with DNSIMPLE_ALLOW_PRIVATE or
// DNSIMPLE_TESTING (any value recognized by strconv.ParseBool) or by
// calling SetAllowPrivate(true). Cloud metadata endpoints stay blocked.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var allowPrivate atomic.Bool

var privateNetworks []*net.IPNet

// lookupIP resolves base URL hosts. Replaced in tests.
var lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
	return net.DefaultResolver.LookupIP(ctx, "ip", host)
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return v
}

func init() {
	allowPrivate.Store(envBool("DNSIMPLE_ALLOW_PRIVATE") || envBool("DNSIMPLE_TESTING"))

	for _, cidr := range []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598
		"169.254.0.0/16",  // RFC3927
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737
		"198.18.0.0/15",   // RFC2544
		"198.51.100.0/24", // RFC5737
		"203.0.113.0/24",  // RFC5737
		"240.0.0.0/4",     // RFC1112
		"fc00::/7",        // RFC4193
		"fe80::/10",       // RFC4291
		"ff00::/8",        // RFC4291
		"::1/128",
		"::/128",
		"2001:db8::/32", // RFC3849
	} {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

// SetAllowPrivate enables or disables private and loopback base URLs.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and loopback base URLs are
// currently allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateBaseURL checks an API base URL such as https://api.dnsimple.com.
//
// The URL must be absolute with an https scheme (http only when private
// hosts are allowed), carry no query or fragment and must not already end in
// the /v2 version prefix. Hosts resolving to private, loopback or link-local
// addresses are rejected unless private hosts are allowed.
func ValidateBaseURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("base URL exceeds maximum length of %d characters", MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !allowPrivate.Load() {
			return fmt.Errorf("base URL must use https, got %q (use --allow-private for local testing)", rawURL)
		}
	default:
		return fmt.Errorf("invalid base URL scheme %q: only https is allowed", u.Scheme)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query or fragment")
	}
	if path := strings.TrimSuffix(u.Path, "/"); path == "/v2" || strings.HasSuffix(path, "/v2") {
		return fmt.Errorf("base URL must not include the /v2 prefix, use %s://%s", u.Scheme, u.Host)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("base URL must contain a hostname")
	}
	if isCloudMetadata(host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if !allowPrivate.Load() && isLocalhost(host) {
		return fmt.Errorf("localhost base URLs are not allowed (use --allow-private)")
	}

	if ip := net.ParseIP(host); ip != nil {
		return validateIP(ip)
	}
	return validateHost(host)
}

func isLocalhost(host string) bool {
	host = strings.ToLower(host)
	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "::":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func isCloudMetadata(host string) bool {
	host = strings.ToLower(host)
	switch host {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(host, ".metadata.google.internal")
}

func validateIP(ip net.IP) error {
	if ip.Equal(net.IPv4(169, 254, 169, 254)) {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return fmt.Errorf("private IP addresses are not allowed")
		}
	}
	return nil
}

// validateHost checks every address a host resolves to. Hosts that do not
// resolve are accepted; the request will fail later with a transport error.
func validateHost(host string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ips, err := lookupIP(ctx, host)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if err := validateIP(ip); err != nil {
			return fmt.Errorf("host %q resolves to forbidden IP %s: %w", host, ip, err)
		}
	}
	return nil
}
