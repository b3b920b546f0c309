package transport

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Connectivity answers "is the network plausibly up?" without doing real work.
type Connectivity interface {
	Online() bool
}

// AlwaysOnline never short-circuits a request.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// Switch is flipped by the host when it learns about network changes.
type Switch struct {
	offline atomic.Bool
}

func NewSwitch(online bool) *Switch {
	s := &Switch{}
	s.Set(online)
	return s
}

func (s *Switch) Set(online bool) {
	s.offline.Store(!online)
}

func (s *Switch) Online() bool {
	return !s.offline.Load()
}

const (
	defaultProbeTimeout = time.Second
	defaultProbeTTL     = 3 * time.Second
)

// Probe dials the API host and caches the answer for a short TTL, so a
// burst of requests costs at most one dial.
type Probe struct {
	addr    string
	timeout time.Duration
	ttl     time.Duration
	dial    func(network, address string, timeout time.Duration) (net.Conn, error)

	mu      sync.Mutex
	checked time.Time
	online  bool
}

func NewProbe(addr string) *Probe {
	return &Probe{
		addr:    addr,
		timeout: defaultProbeTimeout,
		ttl:     defaultProbeTTL,
		dial:    net.DialTimeout,
	}
}

func (p *Probe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checked.IsZero() && time.Since(p.checked) < p.ttl {
		return p.online
	}

	conn, err := p.dial("tcp", p.addr, p.timeout)
	p.online = err == nil
	p.checked = time.Now()
	if conn != nil {
		conn.Close()
	}
	return p.online
}

// ProbeAddr derives host:port from an API base URL.
func ProbeAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("base URL %q has no host", baseURL)
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
