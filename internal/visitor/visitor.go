package visitor

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// idHexLen — 12 hex chars ≈ 48 bits; достаточно против коллизий на наших объёмах.
const idHexLen = 12

var mobileUA = regexp.MustCompile(`(?i)mobile`)

// Meta is the per-request client metadata the analytics pipeline consumes.
// The raw IP stays in memory only; storage sees just the derived id.
type Meta struct {
	IP        string
	UserAgent string
	City      string
	Country   string
	IsMobile  bool
}

// DeriveID produces the stable pseudonymous visitor id: a truncated one-way
// digest over network address and agent string.
func DeriveID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "-" + userAgent))
	return hex.EncodeToString(sum[:])[:idHexLen]
}

// FromRequest extracts client metadata from proxy headers with the same
// fallbacks the edge deployment used.
func FromRequest(r *http.Request) Meta {
	ip := clientIP(r)
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}

	city := r.Header.Get("X-Vercel-IP-City")
	if city == "" {
		city = "Unknown City"
	} else if dec, err := url.QueryUnescape(city); err == nil {
		city = dec
	}
	country := r.Header.Get("X-Vercel-IP-Country")
	if country == "" {
		country = "Unknown Country"
	}

	return Meta{
		IP:        ip,
		UserAgent: ua,
		City:      city,
		Country:   country,
		IsMobile:  mobileUA.MatchString(ua),
	}
}

func (m Meta) VisitorID() string {
	return DeriveID(m.IP, m.UserAgent)
}

// Device is the coarse device label stored on the visitor profile.
func (m Meta) Device() string {
	if m.IsMobile {
		return "mobile"
	}
	return "desktop"
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// Первый hop — адрес клиента.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
