package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoPrincipal      = fmt.Errorf("no authenticated principal")
	ErrInvalidState     = fmt.Errorf("invalid oauth state")

	// Persistence errors
	ErrNotFound   = fmt.Errorf("record not found")
	ErrDuplicate  = fmt.Errorf("duplicate record")
	ErrValidation = fmt.Errorf("validation failed")

	// Claim errors
	ErrUnparseableTimestamp = fmt.Errorf("unparseable timestamp")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
