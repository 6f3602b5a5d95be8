package relay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultEventsSubject is the NATS subject ticket events are published on.
const DefaultEventsSubject = "washrelay.tickets.submitted"

// Publisher delivers ticket events. *bus.Bus satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, subject, id string, v any) error
}

// Options configures a Relay. Client is required; every other field has a default.
type Options struct {
	Client  *Client
	Profile *Profile
	Logger  zerolog.Logger

	// Registerer receives the relay metrics. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Events is optional. When nil no ticket events are published.
	Events        Publisher
	EventsSubject string

	AllowedOrigins []string
	// RateLimit is the number of service requests allowed per client IP per minute.
	// Zero disables rate limiting.
	RateLimit int

	Now func() time.Time
}

// Relay validates machine ids and forwards service requests to the vendor.
type Relay struct {
	client         *Client
	profile        Profile
	logger         zerolog.Logger
	metrics        *Metrics
	gatherer       prometheus.Gatherer
	events         Publisher
	eventsSubject  string
	allowedOrigins []string
	rateLimit      int
	now            func() time.Time
}

// New builds a Relay from opts.
func New(opts Options) (*Relay, error) {
	if opts.Client == nil {
		return nil, errors.New("upstream client is required")
	}

	profile := DefaultProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}

	metrics, err := NewMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	subject := opts.EventsSubject
	if subject == "" {
		subject = DefaultEventsSubject
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Relay{
		client:         opts.Client,
		profile:        profile,
		logger:         opts.Logger,
		metrics:        metrics,
		gatherer:       gatherer,
		events:         opts.Events,
		eventsSubject:  subject,
		allowedOrigins: opts.AllowedOrigins,
		rateLimit:      opts.RateLimit,
		now:            now,
	}, nil
}

// Submit validates rawMachineID, resolves its site and files a service ticket.
// The returned error is one of the package's error kinds; StatusFor maps it to a
// response. The lookup is returned whenever the site search succeeded.
func (r *Relay) Submit(ctx context.Context, rawMachineID string) (lookup SiteLookup, err error) {
	defer func() { r.metrics.observeOutcome(err) }()

	id, err := ParseMachineID(rawMachineID)
	if err != nil {
		r.logger.Info().Str("machine_id", rawMachineID).Msg("invalid machine id format")
		return SiteLookup{}, err
	}

	r.logger.Info().Str("machine_id", id.String()).Msg("fetching site id")
	start := r.now()
	lookup, err = r.client.LookupSite(ctx, id)
	r.metrics.observeUpstream("lookup", r.now().Sub(start).Seconds())
	if err != nil {
		r.logger.Error().Err(err).Str("machine_id", id.String()).Msg("site lookup failed")
		return SiteLookup{}, err
	}

	if lookup.SiteID == "" {
		r.logger.Warn().Str("machine_id", id.String()).Msg("site id not found")
		return lookup, ErrSiteNotFound
	}
	if lookup.AlreadyReported {
		r.logger.Warn().Str("machine_id", id.String()).Str("site_id", lookup.SiteID).Msg("machine id already reported")
		return lookup, ErrAlreadyReported
	}

	r.logger.Info().Str("machine_id", id.String()).Str("site_id", lookup.SiteID).Msg("submitting service request")
	start = r.now()
	err = r.client.SubmitTicket(ctx, Ticket{MachineID: id, SiteID: lookup.SiteID, Profile: r.profile})
	r.metrics.observeUpstream("submit", r.now().Sub(start).Seconds())
	if err != nil {
		r.logger.Error().Err(err).Str("machine_id", id.String()).Str("site_id", lookup.SiteID).Msg("service request submission failed")
		return lookup, err
	}

	r.logger.Info().Str("machine_id", id.String()).Str("site_id", lookup.SiteID).Msg("service request submitted")
	r.publishTicket(ctx, id, lookup.SiteID)
	return lookup, nil
}

// TicketEvent is published after a service request is accepted by the vendor.
type TicketEvent struct {
	EventID     string    `json:"event_id"`
	MachineID   string    `json:"machine_id"`
	SiteID      string    `json:"site_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (r *Relay) publishTicket(ctx context.Context, id MachineID, siteID string) {
	if r.events == nil {
		return
	}
	event := TicketEvent{
		EventID:     uuid.NewString(),
		MachineID:   id.String(),
		SiteID:      siteID,
		SubmittedAt: r.now().UTC(),
	}
	if err := r.events.PublishEvent(ctx, r.eventsSubject, event.EventID, event); err != nil {
		r.logger.Warn().Err(err).Str("subject", r.eventsSubject).Msg("publish ticket event")
	}
}
