package shuffleplan

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var configValidator = validator.New()

var errBroadcastRequiresTwoInputJoin = errors.New("shuffleplan: BroadcastConfig.Enabled requires IsTwoInputJoin")

// CoordinatorConfig parameterizes a single Coordinator instance. It is
// validated once, at construction, rather than re-checked on every call.
type CoordinatorConfig struct {
	// NumExchanges is the number of exchanges expected to register with this
	// coordinator before the first Estimate or PlanFor call. Asserted
	// against the actual registration count at estimation time; a mismatch
	// poisons the coordinator with ErrKindUnexpectedRegistrationCount. Zero
	// is a valid value (a coordinator with no registered exchanges).
	NumExchanges uint32 `validate:"-"`

	// TargetBytes is the advisory per-post-partition byte budget passed to
	// Coalesce.
	TargetBytes uint64 `validate:"required"`

	// MinPartitions, when non-nil, caps the effective coalescing target at
	// max(ceil(total/MinPartitions), 16) bytes, pushing the plan toward at
	// least this many post-shuffle partitions; the greedy pass does not
	// guarantee that count. See Coalesce for the exact derivation.
	MinPartitions *uint32 `validate:"omitempty,gt=0"`

	// Broadcast controls small-side broadcast consideration for two-input
	// joins. Zero value leaves broadcast disabled.
	Broadcast BroadcastConfig

	// IsTwoInputJoin marks this coordinator as driving a two-input join,
	// enabling broadcast consideration. A coordinator with any other number
	// of registered exchanges never broadcasts regardless of this flag.
	IsTwoInputJoin bool

	// Clock is the time source used to stamp EstimationReport.Duration.
	// Defaults to RealClock when nil.
	Clock Clock `validate:"-"`

	// OnEstimation, when set, is invoked exactly once after estimation
	// completes (successfully or not) with a report describing the outcome.
	// It runs synchronously on the estimating goroutine, while the
	// coordinator's lock is still held, so it must not call back into the
	// coordinator it was configured for.
	OnEstimation func(EstimationReport) `validate:"-"`
}

// EstimationReport summarizes one completed (or failed) estimation pass,
// handed to CoordinatorConfig.OnEstimation.
type EstimationReport struct {
	// Duration is wall-clock time spent gathering statistics and running
	// the coalescing/broadcast policy.
	Duration int64

	// TotalBytes is the sum of all bytes reported across every registered
	// exchange's map stage, zero on failure.
	TotalBytes uint64

	// Broadcast reports whether the resulting plan set used broadcast mode.
	Broadcast bool

	// Err is the failure that poisoned the coordinator, or nil on success.
	Err error
}

// Validate checks this config's struct tags and cross-field invariants.
func (c CoordinatorConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return newCoordinatorError(ErrKindInvariantViolation, "", err)
	}
	if c.Broadcast.Enabled && !c.IsTwoInputJoin {
		return newCoordinatorError(ErrKindInvariantViolation, "", errBroadcastRequiresTwoInputJoin)
	}
	return nil
}
