package security

import (
	"context"
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/lblanc/grafana-integration/pkg/types"
)

const (
	dialTimeout  = 10 * time.Second
	expiringDays = 30
)

// Certificate states reported in CertStatus.Status.
const (
	StatusValid       = "valid"
	StatusExpiring    = "expiring"
	StatusExpired     = "expired"
	StatusUnreachable = "unreachable"
)

// Check dials the REST endpoint and describes the leaf certificate it
// presents. It returns nil for non-HTTPS endpoints.
func Check(ctx context.Context, endpoint string, insecureSkipVerify bool) *types.CertStatus {
	return check(ctx, endpoint, insecureSkipVerify, time.Now())
}

func check(ctx context.Context, endpoint string, insecureSkipVerify bool, now time.Time) *types.CertStatus {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" {
		return nil
	}

	cs := &types.CertStatus{Endpoint: u.Scheme + "://" + u.Host}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // user-configured
		},
	}

	netConn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		cs.Status = StatusUnreachable
		return cs
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()

	peerCerts := conn.ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		cs.Status = StatusUnreachable
		return cs
	}

	leaf := peerCerts[0]
	daysLeft := leaf.NotAfter.Sub(now).Hours() / 24

	cs.NotAfter = leaf.NotAfter.UTC().Format(time.RFC3339)
	cs.Issuer = leaf.Issuer.CommonName
	cs.DaysLeft = int(math.Floor(daysLeft))

	switch {
	case daysLeft <= 0:
		cs.Status = StatusExpired
	case daysLeft <= expiringDays:
		cs.Status = StatusExpiring
	default:
		cs.Status = StatusValid
	}

	return cs
}
