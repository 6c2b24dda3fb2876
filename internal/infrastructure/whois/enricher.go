// Package whois fills domain registration features from WHOIS records.
package whois

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

// ErrNoRegistration is returned when no WHOIS record yields usable dates
var ErrNoRegistration = errors.New("no registration data")

// LookupFunc returns the raw WHOIS response for domain
type LookupFunc func(domain string) (string, error)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// Registration holds the parsed dates of a domain record
type Registration struct {
	Domain  string
	Created time.Time
	Expires time.Time
}

// Enricher sets time_domain_activation and time_domain_expiration
type Enricher struct {
	lookup LookupFunc
	now    func() time.Time
	logger *logger.Logger
}

// Option configures an Enricher
type Option func(*Enricher)

// WithLookup replaces the network lookup
func WithLookup(fn LookupFunc) Option {
	return func(e *Enricher) { e.lookup = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// NewEnricher creates an enricher querying WHOIS servers with the given timeout
func NewEnricher(timeout time.Duration, log *logger.Logger, opts ...Option) *Enricher {
	client := whois.NewClient()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	e := &Enricher{
		lookup: func(domain string) (string, error) { return client.Whois(domain) },
		now:    time.Now,
		logger: log.WithComponent("whois"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich looks up hostname and writes the registration age and remaining
// lifetime, in days, into features. IP hosts are left untouched.
func (e *Enricher) Enrich(ctx context.Context, hostname string, features *models.FeatureVector) error {
	hostname = strings.TrimSuffix(strings.ToLower(hostname), ".")
	if hostname == "" || net.ParseIP(hostname) != nil {
		return nil
	}

	type result struct {
		reg *Registration
		err error
	}
	done := make(chan result, 1)
	go func() {
		reg, err := e.Lookup(hostname)
		done <- result{reg, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return fmt.Errorf("failed to look up %s: %w", hostname, res.err)
	}

	now := e.now()
	if !res.reg.Created.IsZero() {
		features[models.FeatureTimeDomainActivation] = days(now.Sub(res.reg.Created))
	}
	if !res.reg.Expires.IsZero() {
		features[models.FeatureTimeDomainExpiration] = days(res.reg.Expires.Sub(now))
	}

	e.logger.Debug().
		Str("host", hostname).
		Str("domain", res.reg.Domain).
		Time("created", res.reg.Created).
		Time("expires", res.reg.Expires).
		Msg("domain enriched")

	return nil
}

// Lookup resolves the registration for domain, walking up to the parent
// domain when a subdomain has no record of its own
func (e *Enricher) Lookup(domain string) (*Registration, error) {
	for {
		reg, err := e.lookupOne(domain)
		if err == nil {
			return reg, nil
		}
		parts := strings.Split(domain, ".")
		if len(parts) <= 2 {
			return nil, err
		}
		domain = strings.Join(parts[1:], ".")
	}
}

func (e *Enricher) lookupOne(domain string) (*Registration, error) {
	raw, err := e.lookup(domain)
	if err != nil {
		return nil, err
	}

	info, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse whois response: %w", err)
	}
	if info.Domain == nil {
		return nil, ErrNoRegistration
	}

	reg := &Registration{
		Domain:  domain,
		Created: parseDate(info.Domain.CreatedDate),
		Expires: parseDate(info.Domain.ExpirationDate),
	}
	if reg.Created.IsZero() && reg.Expires.IsZero() {
		return nil, ErrNoRegistration
	}
	return reg, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func days(d time.Duration) float64 {
	return math.Floor(d.Hours() / 24)
}
