// Package collector runs one poll cycle against a BMC per scrape
// request and exposes the gathered hardware health and inventory
// signals as a flat gauge metric family.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haein/redfish-exporter/internal/redfish"
)

// Profile selects the traversal variant for a target.
type Profile int

const (
	// ProfileStandard walks the compute system with its processor and
	// memory collections.
	ProfileStandard Profile = iota
	// ProfileGPU additionally walks the HGX GPU baseboard subtree.
	ProfileGPU
)

const gpuProfileCode = "haein_gpu"

// ProfileFromCode resolves a credential profile code to a traversal
// profile once, at target construction.
func ProfileFromCode(code string) Profile {
	if code == gpuProfileCode {
		return ProfileGPU
	}
	return ProfileStandard
}

// Target identifies one BMC endpoint for a single poll cycle. It is
// built per scrape request and discarded afterwards.
type Target struct {
	Host     string
	Endpoint string
	Username string
	Password string
	Profile  Profile
}

// NewTarget derives the management address from the scraped hostname.
// Management controllers are reachable under the host's -ipmi alias on
// the secure management port.
func NewTarget(host, username, password, code string) Target {
	addr := host + "-ipmi"
	return Target{
		Host:     addr,
		Endpoint: "https://" + addr,
		Username: username,
		Password: password,
		Profile:  ProfileFromCode(code),
	}
}

// Settings bounds the poll cycle phases.
type Settings struct {
	ProbeTimeout   time.Duration
	SessionTimeout time.Duration
	LoginRetries   int
}

// DefaultSettings match the documented cycle bounds: a 3 second
// connectivity probe, a 30 second session window, two login retries.
func DefaultSettings() Settings {
	return Settings{
		ProbeTimeout:   3 * time.Second,
		SessionTimeout: 30 * time.Second,
		LoginRetries:   2,
	}
}

// Collector implements prometheus.Collector for one target and one
// scrape. Each Collect call is an independent, stateless poll cycle:
// probe, login, walk, logout.
type Collector struct {
	family   string
	target   Target
	settings Settings
	logger   *slog.Logger
}

// New creates a collector emitting under the given metric family name.
func New(family string, target Target, settings Settings, logger *slog.Logger) *Collector {
	return &Collector{
		family:   family,
		target:   target,
		settings: settings,
		logger:   logger.With("target", target.Host),
	}
}

// Describe sends no descriptors: the label sets are data-dependent, so
// the collector registers as unchecked.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect runs the poll cycle and flushes whatever samples were
// accumulated, plus the scrape duration, regardless of how far the
// cycle got.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	sink := newSink(c.family)
	defer sink.flush(ch)

	c.poll(context.Background(), sink)
}

func (c *Collector) poll(ctx context.Context, sink *Sink) {
	client := redfish.NewClient(c.target.Endpoint, c.target.Username, c.target.Password, c.settings.SessionTimeout, c.logger)

	if err := client.Probe(c.settings.ProbeTimeout); err != nil {
		c.logger.Warn("connection check failed", "error", err)
		sink.Add(0, Labels{"labeltype": "ping_check", "ping_check": "Fail"})
		return
	}
	sink.Add(1, Labels{"labeltype": "ping_check", "ping_check": "OK"})

	cycleCtx, cancel := context.WithTimeout(ctx, c.settings.SessionTimeout)
	defer cancel()

	if err := client.Login(cycleCtx, c.settings.LoginRetries); err != nil {
		c.logger.Error("authorization failed", "error", err)
		sink.Add(0, Labels{"labeltype": "redfish_login", "redfish_login": "Failed"})
		return
	}
	sink.Add(1, Labels{"labeltype": "redfish_login", "redfish_login": "OK"})

	// Logout runs on every exit path, with its own context so an
	// exhausted cycle deadline cannot leak the session.
	defer func() {
		logoutCtx, logoutCancel := context.WithTimeout(ctx, 5*time.Second)
		defer logoutCancel()
		if err := client.Logout(logoutCtx); err != nil {
			c.logger.Debug("logout failed", "error", err)
		} else {
			c.logger.Debug("logged out")
		}
	}()

	// A misbehaving document must never take down the scrape: samples
	// gathered before the failure are still emitted.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("traversal panicked", "panic", r)
		}
	}()

	newWalker(client, sink, c.logger).walk(cycleCtx, c.target.Profile)
}
