package constants

import "time"

// Event routing.
const (
	TenancyEventsExchange = "tenancy.events"

	RoutingKeyDispositionCreated   = "deposit.disposition_created"
	RoutingKeyRefundCompleted      = "deposit.refund_completed"
	RoutingKeyNoticeServed         = "eviction.notice_served"
	RoutingKeyNoticeStatusChanged  = "eviction.notice_status_changed"
	RoutingKeyOffboardingCompleted = "offboarding.completed"
)

// Roles carried in the JWT "role" claim.
const (
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

const (
	// Daily at 00:15 UTC.
	ExpireNoticesCronSpec = "15 0 * * *"

	MaxEvidenceUploadBytes = 25 << 20

	// Budget for detached side effects (email, SMS, events).
	SideEffectTimeout = 15 * time.Second

	OffboardingOutcomeSuccess = "SUCCESS"
	OffboardingOutcomePartial = "PARTIAL"
	OffboardingOutcomeFailed  = "FAILED"
)
