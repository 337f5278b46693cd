package dtos

type UpdateChecklistRequest struct {
	DepositProcessed  *bool `json:"deposit_processed,omitempty"`
	KeysCollected     *bool `json:"keys_collected,omitempty"`
	UnitInspected     *bool `json:"unit_inspected,omitempty"`
	CleaningCompleted *bool `json:"cleaning_completed,omitempty"`
	RepairsCompleted  *bool `json:"repairs_completed,omitempty"`
}

type UnitAvailabilityRequest struct {
	Force bool `json:"force"`
}
