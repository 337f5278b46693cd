package routes

const (
	// Health
	Health = "/health"

	// Offboarding
	Offboarding   = "/api/v1/tenancy/leases/{leaseId}/offboarding"
	TenantHistory = "/api/v1/tenancy/tenants/{tenantId}/history"

	// Leases
	LeaseApprove   = "/api/v1/tenancy/leases/{leaseId}/approve"
	LeaseTerminate = "/api/v1/tenancy/leases/{leaseId}/terminate"

	// Deposit dispositions
	LeaseDispositions    = "/api/v1/tenancy/leases/{leaseId}/deposit-dispositions"
	Disposition          = "/api/v1/tenancy/deposit-dispositions/{dispositionId}"
	DispositionStatus    = "/api/v1/tenancy/deposit-dispositions/{dispositionId}/refund-status"
	DispositionProcess   = "/api/v1/tenancy/deposit-dispositions/{dispositionId}/process-refund"
	DepositEvidence      = "/api/v1/tenancy/deposit-evidence"
	DepositRefundPreview = "/api/v1/tenancy/deposit-refund-preview"

	// Eviction notices
	LeaseNotices  = "/api/v1/tenancy/leases/{leaseId}/eviction-notices"
	Notice        = "/api/v1/tenancy/eviction-notices/{noticeId}"
	NoticeStatus  = "/api/v1/tenancy/eviction-notices/{noticeId}/status"
	NoticesExpire = "/api/v1/tenancy/eviction-notices/expire"

	// Departures
	LeaseDepartures = "/api/v1/tenancy/leases/{leaseId}/departures"

	// Turnover
	UnitChecklist    = "/api/v1/tenancy/units/{unitId}/turnover-checklist"
	Checklist        = "/api/v1/tenancy/turnover-checklists/{checklistId}"
	UnitAvailability = "/api/v1/tenancy/units/{unitId}/availability"
)
