package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	applog "mfdist/internal/log"
)

type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

// Detector flags suspicious requests and resolves client IPs behind trusted proxies.
type Detector struct {
	metrics        *DetectionMetrics
	trustedProxies []*net.IPNet
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const maxURLLength = 2048

func NewDetector() *Detector {
	return &Detector{
		metrics: &DetectionMetrics{},
		trustedProxies: []*net.IPNet{
			parseCIDR("127.0.0.0/8"),
			parseCIDR("10.0.0.0/8"),
			parseCIDR("172.16.0.0/12"),
			parseCIDR("192.168.0.0/16"),
		},
	}
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// DetectSuspiciousRequest reports the first rule the request trips, or "".
func (d *Detector) DetectSuspiciousRequest(r *http.Request) string {
	reason := detect(r)
	if reason != "" {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return reason
}

func detect(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) {
			return "path:" + pattern
		}
		if strings.Contains(query, pattern) {
			return "query:" + pattern
		}
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range suspiciousAgents {
		if strings.Contains(userAgent, agent) {
			return "agent:" + agent
		}
	}

	for _, method := range unusualMethods {
		if r.Method == method {
			return "method:" + method
		}
	}

	if len(r.URL.String()) > maxURLLength {
		return "url_length"
	}

	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "forwarded_hops"
	}
	return ""
}

// ExtractClientIP trusts X-Forwarded-For and X-Real-IP only from private networks.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	if d.isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
			atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
			atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
		}
	}

	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.metrics.InvalidIPAttempts),
	}
}

func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// Middleware logs suspicious requests and lets them through.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := d.DetectSuspiciousRequest(r); reason != "" {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, d.ExtractClientIP(r),
				"reason", reason)
		}
		next.ServeHTTP(w, r)
	})
}
