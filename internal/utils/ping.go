package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// AuthorizerPingTimeout bounds the Authorizer reachability check.
const AuthorizerPingTimeout = 1500 * time.Millisecond

// PingService checks that a TCP connection to the service URL's host can be opened.
func PingService(ctx context.Context, serviceURL string) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("invalid URL: no host in %q", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "80"
		if parsedURL.Scheme == "https" {
			port = "443"
		}
	}
	address := net.JoinHostPort(parsedURL.Hostname(), port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks the Authorizer service is reachable.
func PingAuthorizer(authzURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), AuthorizerPingTimeout)
	defer cancel()
	return PingService(ctx, authzURL)
}
