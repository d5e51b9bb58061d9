package leads

import (
	"context"
	"errors"
	"time"

	"github.com/legendmotors/skywell-leads/internal/observability/metrics"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const defaultPersistTimeout = 5 * time.Second

// Gateway forwards a header set to the CRM and returns the raw response text.
type Gateway interface {
	Forward(ctx context.Context, headers Headers) (string, error)
}

// Failure describes a submission the CRM did not accept.
type Failure struct {
	Kind       Kind      `json:"kind"`
	LeadID     string    `json:"lead_id,omitempty"`
	Headers    Headers   `json:"headers"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error"`
	FailedAt   time.Time `json:"failed_at"`
}

// FailureSink records failed CRM submissions for later inspection.
type FailureSink interface {
	Publish(ctx context.Context, f Failure) error
}

// Result is the outcome of one submission. LocalErr is reported separately
// from the returned error because a local write failure is not fatal.
type Result struct {
	Lead        *Lead
	LocalErr    error
	GatewayBody string
}

// Persisted reports whether the local copy was written.
func (r *Result) Persisted() bool {
	return r != nil && r.Lead != nil && r.LocalErr == nil
}

// Pipeline validates a submission, keeps a local copy and forwards it to the
// CRM.
type Pipeline struct {
	store          Store
	gateway        Gateway
	sink           FailureSink
	metrics        *metrics.LeadMetrics
	logger         *logging.Logger
	persistTimeout time.Duration
	now            func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithFailureSink publishes failed CRM calls to sink.
func WithFailureSink(sink FailureSink) PipelineOption {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithMetrics records pipeline outcomes.
func WithMetrics(m *metrics.LeadMetrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithPersistTimeout bounds the local write.
func WithPersistTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.persistTimeout = d
		}
	}
}

// NewPipeline wires the store and gateway. A nil store disables local copies.
func NewPipeline(store Store, gateway Gateway, logger *logging.Logger, opts ...PipelineOption) *Pipeline {
	if gateway == nil {
		panic("leads: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	p := &Pipeline{
		store:          store,
		gateway:        gateway,
		logger:         logger,
		persistTimeout: defaultPersistTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs one submission: local save, required-field check, phone
// formatting, header transform, single CRM call. There is no retry.
func (p *Pipeline) Submit(ctx context.Context, kind Kind, payload Payload) (*Result, error) {
	result := &Result{}
	result.Lead, result.LocalErr = p.persist(ctx, kind, payload)

	// A phone of only whitespace normalises to "" and counts as missing.
	outbound := payload.Clone()
	outbound[FieldMobileNumber] = NormalizePhone(payload.String(FieldMobileNumber))
	if missing := outbound.Missing(RequiredFields); len(missing) > 0 {
		p.metrics.ObserveSubmission(string(kind), "validation_error")
		return result, &ValidationError{Missing: missing}
	}

	headers := BuildHeaders(outbound)

	body, err := p.gateway.Forward(ctx, headers)
	if err != nil {
		p.metrics.ObserveSubmission(string(kind), outcome(err))
		p.logger.Error("crm submission failed", "kind", kind, "error", err)
		p.publishFailure(ctx, kind, result.Lead, headers, err)
		return result, err
	}

	p.metrics.ObserveSubmission(string(kind), "success")
	p.logger.Info("lead forwarded to crm", "kind", kind, "persisted", result.Persisted())
	result.GatewayBody = body
	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, kind Kind, payload Payload) (*Lead, error) {
	if p.store == nil {
		return nil, nil
	}
	lead := NewLead(kind, payload)
	lead.CreatedAt = p.now()

	ctx, cancel := context.WithTimeout(ctx, p.persistTimeout)
	defer cancel()
	if err := p.store.Create(ctx, lead); err != nil {
		p.metrics.ObserveLocalFailure(string(kind))
		p.logger.Warn("local lead save failed, continuing", "kind", kind, "error", err)
		return nil, err
	}
	return lead, nil
}

func (p *Pipeline) publishFailure(ctx context.Context, kind Kind, lead *Lead, headers Headers, err error) {
	if p.sink == nil {
		return
	}
	f := Failure{
		Kind:     kind,
		Headers:  headers,
		Error:    err.Error(),
		FailedAt: p.now(),
	}
	if lead != nil {
		f.LeadID = lead.ID
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		f.StatusCode = gwErr.StatusCode
	}
	// The request context may already be cancelled when the CRM timed out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.persistTimeout)
	defer cancel()
	if pubErr := p.sink.Publish(pubCtx, f); pubErr != nil {
		p.logger.Warn("dead-letter publish failed", "kind", kind, "error", pubErr)
	}
}

func outcome(err error) string {
	var gwErr *GatewayError
	var netErr *NetworkError
	switch {
	case errors.As(err, &gwErr):
		return "gateway_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "error"
	}
}
