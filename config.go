package mostro

import (
	"log/slog"
	"time"

	"github.com/mostro-go/client/internal/correlator"
)

// DefaultSearchTimeout is the window search_orders keeps its
// subscription open, per spec.md §5.
const DefaultSearchTimeout = 5 * time.Second

// mostroInfoLookback is how far back the Orchestrator asks for a
// configured Mostro instance's kind-38383 documents, per spec.md §4.H.
const mostroInfoLookback = 14 * 24 * time.Hour

type config struct {
	relays         []string
	mostroPubKey   string
	privateKey     string
	debug          bool
	requestTimeout time.Duration
	searchTimeout  time.Duration
	logger         *slog.Logger
}

// Option configures a Client at construction. Each Option mirrors one
// of spec.md §6's recognized configuration options.
type Option func(*config)

// WithRelays sets the non-empty list of wss:// relay URLs the Client
// connects to. Required — New fails with ErrNoRelays without it.
func WithRelays(relays ...string) Option {
	return func(c *config) { c.relays = relays }
}

// WithMostroPubKey enables targeted order/instance-info subscription
// against a single Mostro instance, given as hex or npub.
func WithMostroPubKey(pubKey string) Option {
	return func(c *config) { c.mostroPubKey = pubKey }
}

// WithPrivateKey loads a user key (hex or nsec) at construction,
// enabling trade actions and inbound DM receipt.
func WithPrivateKey(privateKey string) Option {
	return func(c *config) { c.privateKey = privateKey }
}

// WithDebug enables verbose diagnostics on the Client's default
// logger. Has no effect when WithLogger supplies an explicit logger —
// the embedding application then owns log verbosity.
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// WithRequestTimeout overrides the default 10s trade-action timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) { c.requestTimeout = d }
}

// WithSearchTimeout overrides the default 5s search_orders window.
func WithSearchTimeout(d time.Duration) Option {
	return func(c *config) { c.searchTimeout = d }
}

// WithLogger injects a logger every internal component logs through.
// The Client never calls slog.SetDefault; only an embedding
// application's main package should do that.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func defaultConfig() config {
	return config{
		requestTimeout: correlator.DefaultTimeout,
		searchTimeout:  DefaultSearchTimeout,
	}
}
