package services

import (
	"time"

	"github.com/rohits-web03/dropvault/internal/config"
	"github.com/rohits-web03/dropvault/internal/logging"
)

// Deps are the collaborators the services run against.
type Deps struct {
	Deliveries DeliveryStore
	Files      FileStore
	Codes      AccessCodeStore
	Logs       AccessLogStore
	Blobs      BlobStore
	Notifier   Notifier
	Events     EventPublisher
	Limiter    RateLimiter
	Log        logging.Logger
}

// Services bundles the wired components.
type Services struct {
	Gate        AccessGate
	Counters    *CounterService
	Lifecycle   *LifecycleManager
	Destruction *DestructionCoordinator
	AccessCodes *AccessCodeVerifier
	Grants      *GrantIssuer
	Deliveries  *DeliveryService
	Sweeper     *Sweeper
}

func New(deps Deps, policy config.DeliveryPolicy, jwtSecret string) *Services {
	audit := NewAuditor(deps.Logs, deps.Log)
	gate := AccessGate{StrictTokens: policy.StrictShareTokens}
	counters := NewCounterService(deps.Deliveries)
	destruction := NewDestructionCoordinator(deps.Deliveries, deps.Files, deps.Blobs, audit, deps.Events, deps.Log)
	lifecycle := NewLifecycleManager(deps.Deliveries, destruction, audit, deps.Events, deps.Log)
	grants := NewGrantIssuer(jwtSecret, policy.GrantTTL)

	codes := NewAccessCodeVerifier(deps.Deliveries, deps.Codes, lifecycle, deps.Notifier, deps.Limiter, grants, audit, deps.Log, CodePolicy{
		TTL:               policy.CodeTTL,
		MaxAttempts:       policy.CodeMaxAttempts,
		RequestsPerWindow: policy.CodeRequestsPerWindow,
		RequestWindow:     policy.CodeRequestWindow,
	})

	deliveries := NewDeliveryService(deps.Deliveries, deps.Files, deps.Blobs, deps.Logs, gate, counters, lifecycle, destruction, grants, audit, deps.Log, DeliveryPolicy{
		RequireAccessCode: policy.RequireAccessCode,
		DefaultTTL:        policy.DefaultTTL,
		MaxUploadBytes:    policy.MaxUploadBytes,
		PresignTTL:        15 * time.Minute,
	})

	return &Services{
		Gate:        gate,
		Counters:    counters,
		Lifecycle:   lifecycle,
		Destruction: destruction,
		AccessCodes: codes,
		Grants:      grants,
		Deliveries:  deliveries,
		Sweeper:     NewSweeper(deps.Deliveries, lifecycle, destruction, deps.Log, policy.SweepInterval, policy.SweepBatchSize),
	}
}
