// health.go - Readiness reporting for the wallet daemon
package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shieldcore/internal/walletcore"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

// worse reports whether s ranks below o.
func (s HealthStatus) worse(o HealthStatus) bool {
	rank := map[HealthStatus]int{Healthy: 0, Degraded: 1, Unhealthy: 2}
	return rank[s] > rank[o]
}

// ComponentHealth is the state of one part of the daemon at report time
type ComponentHealth struct {
	Name      string        `json:"name"`
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message"`
	LastCheck time.Time     `json:"last_check"`
	Latency   time.Duration `json:"latency,omitempty"`
}

// HealthReport is the body served at /healthz
type HealthReport struct {
	Status     HealthStatus      `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

type selfTest struct {
	name string
	run  func() error
}

// HealthChecker tracks the prover lifecycle and runs self-tests against the
// core on every report. A daemon with no prover can still serve everything
// except transaction assembly, so a prover that is loading counts as degraded.
type HealthChecker struct {
	mu      sync.Mutex
	version string
	started time.Time
	prover  ComponentHealth
	tests   []selfTest
	now     func() time.Time
}

// NewHealthChecker creates a checker whose prover is not loaded yet
func NewHealthChecker(version string) *HealthChecker {
	hc := &HealthChecker{version: version, now: time.Now}
	hc.started = hc.now()
	hc.prover = ComponentHealth{Name: "prover", Status: Degraded, Message: "not loaded", LastCheck: hc.started}
	return hc
}

func (hc *HealthChecker) setProver(status HealthStatus, msg string, latency time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.prover.Status = status
	hc.prover.Message = msg
	hc.prover.Latency = latency
	hc.prover.LastCheck = hc.now()
}

// ProverLoading marks key loading or setup as in progress.
func (hc *HealthChecker) ProverLoading(source string) {
	hc.setProver(Degraded, "loading keys from "+source, 0)
}

// ProverReady records a usable prover and how long it took to load.
func (hc *HealthChecker) ProverReady(constraints int, took time.Duration) {
	hc.setProver(Healthy, fmt.Sprintf("%d constraints", constraints), took)
}

// ProverFailed records a load failure. Transactions cannot be assembled until restart.
func (hc *HealthChecker) ProverFailed(err error) {
	hc.setProver(Unhealthy, err.Error(), 0)
}

// AddSelfTest registers a check run on every Report.
func (hc *HealthChecker) AddSelfTest(name string, run func() error) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.tests = append(hc.tests, selfTest{name: name, run: run})
}

// Report runs the self-tests and returns the prover state followed by one
// entry per self-test, in registration order.
func (hc *HealthChecker) Report() *HealthReport {
	hc.mu.Lock()
	prover := hc.prover
	tests := append([]selfTest(nil), hc.tests...)
	hc.mu.Unlock()

	report := &HealthReport{
		Status:     prover.Status,
		Version:    hc.version,
		Uptime:     hc.now().Sub(hc.started).Round(time.Second).String(),
		Components: []ComponentHealth{prover},
	}
	for _, test := range tests {
		start := hc.now()
		c := ComponentHealth{Name: test.name, Status: Healthy, Message: "OK"}
		if err := test.run(); err != nil {
			c.Status = Unhealthy
			c.Message = err.Error()
		}
		c.LastCheck = hc.now()
		c.Latency = c.LastCheck.Sub(start)
		if c.Status.worse(report.Status) {
			report.Status = c.Status
		}
		report.Components = append(report.Components, c)
	}
	return report
}

// CoreSelfTest exercises key derivation, address validation and the mnemonic
// round trip on a freshly generated key.
func CoreSelfTest(core *walletcore.Core) func() error {
	return func() error {
		bundle := core.GenerateKey()
		derived, err := core.DeriveFromPrivateKey(bundle.SpendingKey)
		if err != nil {
			return fmt.Errorf("derive: %w", err)
		}
		if derived != bundle {
			return errors.New("derived key material differs from generated")
		}
		if !core.IsValidPublicAddress(bundle.PublicAddress) {
			return errors.New("generated address is invalid")
		}
		phrase, err := core.SpendingKeyToWords(bundle.SpendingKey, walletcore.LanguageCodeEnglish)
		if err != nil {
			return fmt.Errorf("mnemonic: %w", err)
		}
		back, err := core.WordsToSpendingKey(phrase, walletcore.LanguageCodeEnglish)
		if err != nil {
			return fmt.Errorf("mnemonic: %w", err)
		}
		if !strings.EqualFold(back, bundle.SpendingKey) {
			return errors.New("mnemonic round trip changed the key")
		}
		return nil
	}
}
