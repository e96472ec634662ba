package errors

import "fmt"

const (
	HttpInternalError        = "internal_error"
	HttpConfigError          = "config_error"
	HttpValidationError      = "validation_error"
	HttpCounterOverflowError = "counter_overflow"
	HttpShardAssignmentError = "shard_assignment_error"
	HttpOwnershipConflict    = "ownership_conflict"
	HttpUndecodableError     = "undecodable_id"
)

// ErrorResponse is the error response body returned in place of a normal payload.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// ConfigError reports a missing or invalid deployment setting.
// No storage is touched when it is returned.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Setting, e.Reason)
}

// ValidationError reports a rejected request argument. It is raised before any read or write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OverflowError reports that a slot counter would leave its 48-bit budget.
// The stored counter is left at Current.
type OverflowError struct {
	Partition string
	Slot      uint8
	Current   uint64
	Requested uint64
}

// Offending is the value that would have been persisted.
func (e *OverflowError) Offending() uint64 {
	return e.Current + e.Requested
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("counter for partition %q slot %d would exceed 48-bit space: %d + %d",
		e.Partition, e.Slot, e.Current, e.Requested)
}

// AssignmentError reports an authority-issued shard id outside the 9-bit budget.
type AssignmentError struct {
	Partition string
	Shard     uint64
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("shard id %d assigned to partition %q exceeds 9-bit space", e.Shard, e.Partition)
}
