// Package afip talks to the Argentine tax authority's WSAA (authentication)
// and WSFEV1 (electronic invoicing) SOAP services. When certificate material
// is missing, or the forced mock flag is on, the client degrades to a mock
// session so development machines can run the full sale flow offline.
package afip

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/andresbsn/polleria/internal/config"
	"github.com/andresbsn/polleria/internal/infra"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CAERequest asks for authorization of exactly one voucher.
type CAERequest struct {
	PtoVta   int
	CbteTipo int
	DocTipo  int
	DocNro   int64
	CbteNro  int64
	Total    decimal.Decimal
}

// CAEResult is the persisted verdict of one submission. Approved=false with
// a Message means the authority answered and rejected; transport and parse
// failures surface as errors instead.
type CAEResult struct {
	Approved      bool
	CAE           string
	CAEExpiration time.Time
	Message       string
}

// Client implements the fiscal authority protocol: cached WSAA session,
// last-voucher queries and CAE submissions, all behind a circuit breaker so
// an authority outage fast-fails instead of piling up blocked requests.
type Client struct {
	cuit       string
	production bool
	certPath   string
	keyPath    string
	forceMock  bool
	vatRate    decimal.Decimal

	httpClient *http.Client
	cache      SessionCache
	breaker    *infra.CircuitBreaker
	log        zerolog.Logger
	now        func() time.Time
}

func NewClient(cfg *config.Config, cache SessionCache, breaker *infra.CircuitBreaker, log zerolog.Logger) *Client {
	return &Client{
		cuit:       cfg.AFIPCUIT,
		production: cfg.AFIPProduction,
		certPath:   cfg.AFIPCertPath,
		keyPath:    cfg.AFIPKeyPath,
		forceMock:  cfg.AFIPForceMock,
		vatRate:    decimal.NewFromFloat(cfg.AFIPVATRate),
		httpClient: &http.Client{Timeout: cfg.AFIPTimeout()},
		cache:      cache,
		breaker:    breaker,
		log:        log.With().Str("component", "afip").Logger(),
		now:        time.Now,
	}
}

func (c *Client) wsaaURL() string {
	if c.production {
		return wsaaURLProd
	}
	return wsaaURLTest
}

func (c *Client) wsfeURL() string {
	if c.production {
		return wsfeURLProd
	}
	return wsfeURLTest
}

// VATRate returns the configured VAT percentage backed out of totals.
func (c *Client) VATRate() decimal.Decimal { return c.vatRate }

// BreakerState reports the circuit breaker state for the health endpoint.
func (c *Client) BreakerState() string { return c.breaker.State().String() }

// session returns the cached WSAA ticket, logging in again when it expired.
func (c *Client) session(ctx context.Context) (Session, error) {
	if s, ok := c.cache.Get(); ok && s.Valid(c.now()) {
		return s, nil
	}
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) (Session, error) {
	if c.forceMock {
		c.log.Warn().Msg("forced mock enabled, using mock AFIP session")
		return c.mockSession(), nil
	}

	certPEM, certErr := os.ReadFile(c.certPath)
	keyPEM, keyErr := os.ReadFile(c.keyPath)
	if certErr != nil || keyErr != nil {
		c.log.Warn().Str("cert", c.certPath).Str("key", c.keyPath).
			Msg("AFIP certs not found, using mock session")
		return c.mockSession(), nil
	}

	c.log.Info().Msg("authenticating with AFIP")

	tra, err := buildTRA(c.now())
	if err != nil {
		return Session{}, err
	}
	cms, err := signTRA(tra, certPEM, keyPEM)
	if err != nil {
		return Session{}, err
	}

	var s Session
	err = c.breaker.Execute(func() error {
		var lerr error
		s, lerr = loginCms(ctx, c.httpClient, c.wsaaURL(), cms)
		return lerr
	})
	if err != nil {
		return Session{}, fmt.Errorf("authenticate with AFIP: %w", err)
	}

	c.cache.Put(s)
	c.log.Info().Time("expiry", s.Expiry).Msg("AFIP authentication successful")
	return s, nil
}

func (c *Client) mockSession() Session {
	s := Session{
		Token:  MockToken,
		Sign:   MockSign,
		Expiry: c.now().Add(time.Hour),
	}
	c.cache.Put(s)
	return s
}

// LastVoucher returns the highest voucher number the authority has
// authorized for (ptoVta, cbteTipo). Mock sessions always report 0.
func (c *Client) LastVoucher(ctx context.Context, ptoVta, cbteTipo int) (int64, error) {
	s, err := c.session(ctx)
	if err != nil {
		return 0, err
	}
	if s.IsMock() {
		return 0, nil
	}

	var last int64
	err = c.breaker.Execute(func() error {
		var lerr error
		last, lerr = lastVoucher(ctx, c.httpClient, c.wsfeURL(), s, c.cuit, ptoVta, cbteTipo)
		return lerr
	})
	return last, err
}

// RequestCAE submits one voucher for authorization. Under a mock session it
// fabricates an approved result so the rest of the pipeline behaves exactly
// as in production.
func (c *Client) RequestCAE(ctx context.Context, req CAERequest) (CAEResult, error) {
	s, err := c.session(ctx)
	if err != nil {
		return CAEResult{}, err
	}
	if s.IsMock() {
		return CAEResult{
			Approved:      true,
			CAE:           "12345678901234",
			CAEExpiration: time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
			Message:       "MOCKED AFIP RESPONSE",
		}, nil
	}

	var out caeOutcome
	err = c.breaker.Execute(func() error {
		var rerr error
		out, rerr = requestCAE(ctx, c.httpClient, c.wsfeURL(), s, c.cuit, req, c.vatRate)
		return rerr
	})
	if err != nil {
		return CAEResult{}, err
	}
	return CAEResult{
		Approved:      out.Approved,
		CAE:           out.CAE,
		CAEExpiration: out.CAEExpiration,
		Message:       out.Message,
	}, nil
}
