package shuffleplan

import (
	"context"
	"sync"
)

// coordinatorPhase tracks the Coordinator's lifecycle. Mirrors the teacher's
// CircuitBreaker state enum shape: a small closed set of named states with a
// single authoritative field guarded by one mutex.
type coordinatorPhase int

const (
	phaseOpen coordinatorPhase = iota
	phaseEstimating
	phasePlanned
)

// Coordinator is a per-query, one-shot partition planner shared by every
// Exchange reading from the same shuffle boundary (or, for a two-input join,
// the pair of shuffle boundaries feeding the join). Exchanges register
// themselves before the first call to Estimate or PlanFor; that first call
// triggers exactly one estimation pass — gathering map-output statistics for
// every registered exchange and running the coalescing (and, if configured,
// broadcast) policy over them. Every subsequent call, concurrent or
// sequential, observes that same pass's outcome: a Coordinator is poisoned
// by a failed estimation for its entire lifetime and never retries.
//
// A Coordinator is safe for concurrent use. Unlike sync.Once, the one-shot
// gate here is a plain mutex held across the (blocking) estimation body:
// this lets the first caller's error be captured and replayed verbatim to
// every later caller, something sync.Once.Do cannot do since it marks itself
// done whether or not the function it ran returned an error.
type Coordinator struct {
	cfg       CoordinatorConfig
	scheduler Scheduler

	mu      sync.Mutex
	phase   coordinatorPhase
	order   []ExchangeID
	exchs   map[ExchangeID]Exchange
	plans   map[ExchangeID]PostShufflePlan
	failure *CoordinatorError
}

// NewCoordinator constructs a Coordinator bound to scheduler, validating cfg
// first.
func NewCoordinator(cfg CoordinatorConfig, scheduler Scheduler) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	return &Coordinator{
		cfg:       cfg,
		scheduler: scheduler,
		exchs:     make(map[ExchangeID]Exchange),
		plans:     make(map[ExchangeID]PostShufflePlan),
	}, nil
}

// RegisterExchange adds exch to this coordinator. It must be called before
// the first Estimate or PlanFor call; registering after estimation has
// started returns ErrKindInvariantViolation.
func (c *Coordinator) RegisterExchange(exch Exchange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != phaseOpen {
		return newCoordinatorError(ErrKindInvariantViolation, exch.ID(), errRegisterAfterEstimation)
	}
	id := exch.ID()
	if _, exists := c.exchs[id]; exists {
		return newCoordinatorError(ErrKindInvariantViolation, id, errDuplicateExchange)
	}
	c.exchs[id] = exch
	c.order = append(c.order, id)
	return nil
}

// Estimate runs this coordinator's one-shot estimation pass if it has not
// already run, and blocks until it (or a concurrent caller's run) completes.
// It is equivalent to calling PlanFor and discarding the result, useful when
// a caller wants to force estimation without yet needing a specific plan.
func (c *Coordinator) Estimate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureEstimatedLocked(ctx)
}

// PlanFor returns the post-shuffle plan computed for the exchange
// identified by id, running this coordinator's one-shot estimation first if
// it has not already run. Returns ErrKindUnknownExchange if id was never
// registered.
func (c *Coordinator) PlanFor(ctx context.Context, id ExchangeID) (PostShufflePlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureEstimatedLocked(ctx); err != nil {
		return PostShufflePlan{}, err
	}
	plan, ok := c.plans[id]
	if !ok {
		return PostShufflePlan{}, newCoordinatorError(ErrKindUnknownExchange, id, errUnknownExchange)
	}
	return plan, nil
}

// MappingFor returns the CoalescedMapping derived from the plan computed
// for id, running estimation first if needed. Returns an error if id is
// unregistered or its plan is a broadcast plan, which has no single owner
// per pre-partition.
func (c *Coordinator) MappingFor(ctx context.Context, id ExchangeID) (*CoalescedMapping, error) {
	plan, err := c.PlanFor(ctx, id)
	if err != nil {
		return nil, err
	}
	mapping, err := plan.Mapping()
	if err != nil {
		return nil, newCoordinatorError(ErrKindInvariantViolation, id, err)
	}
	return mapping, nil
}

// ensureEstimatedLocked must be called with c.mu held. It runs the
// estimation body at most once per coordinator, serializing concurrent
// callers by keeping the lock held across the blocking body rather than
// releasing it and waiting on a separate signal.
func (c *Coordinator) ensureEstimatedLocked(ctx context.Context) error {
	if c.phase == phasePlanned {
		if c.failure != nil {
			return c.failure
		}
		return nil
	}
	c.phase = phaseEstimating
	start := c.cfg.Clock.Now()
	if err := c.runEstimation(ctx); err != nil {
		var coordErr *CoordinatorError
		if ce, ok := err.(*CoordinatorError); ok {
			coordErr = ce
		} else {
			coordErr = newCoordinatorError(ErrKindUnknown, "", err)
		}
		c.failure = coordErr
		c.phase = phasePlanned
		c.report(ctx, EstimationReport{Duration: int64(c.cfg.Clock.Now().Sub(start)), Err: coordErr})
		return coordErr
	}
	c.phase = phasePlanned
	return nil
}

type gatherResult struct {
	id      ExchangeID
	dep     ShuffleDependency
	stats   MapOutputStatistics
	skipped bool
	err     error
	kind    ErrorKind
}

// runEstimation gathers statistics for every registered exchange concurrently
// (grounded on the teacher's async worker-pool-with-sequenced-reassembly
// shape), then applies the coalescing and broadcast policies. It must be
// called with c.mu held and only once per coordinator.
func (c *Coordinator) runEstimation(ctx context.Context) error {
	if len(c.order) != int(c.cfg.NumExchanges) {
		return newCoordinatorError(ErrKindUnexpectedRegistrationCount, "",
			errUnexpectedRegistrationCount(int(c.cfg.NumExchanges), len(c.order)))
	}

	start := c.cfg.Clock.Now()
	ids := c.order
	results := make([]gatherResult, len(ids))

	var wg sync.WaitGroup
	wg.Add(len(ids))
	for i, id := range ids {
		i, id := i, id
		go func() {
			defer wg.Done()
			results[i] = c.gatherOne(ctx, id)
		}()
	}
	wg.Wait()

	var totalBytes uint64
	for _, r := range results {
		if r.err != nil {
			return newCoordinatorError(r.kind, r.id, r.err)
		}
		for _, b := range r.stats.BytesByPartition {
			totalBytes += b
		}
	}

	broadcastUsed, err := c.computePlansLocked(results)
	if err != nil {
		return err
	}

	c.report(ctx, EstimationReport{
		Duration:   int64(c.cfg.Clock.Now().Sub(start)),
		TotalBytes: totalBytes,
		Broadcast:  broadcastUsed,
	})
	return nil
}

// gatherOne prepares the shuffle dependency and, unless its upstream
// contributes no data, waits for its map stage's statistics. It does not
// touch c's mutable state and is safe to run concurrently with its
// siblings.
func (c *Coordinator) gatherOne(ctx context.Context, id ExchangeID) gatherResult {
	exch := c.exchs[id]

	dep, err := exch.PrepareShuffleDependency(ctx)
	if err != nil {
		return gatherResult{id: id, err: err, kind: ErrKindDependencyPreparation}
	}

	if dep.UpstreamPartitionCount() == 0 {
		return gatherResult{id: id, dep: dep, skipped: true}
	}

	resultCh, err := c.scheduler.SubmitMapStage(ctx, dep)
	if err != nil {
		return gatherResult{id: id, err: err, kind: ErrKindMapStageSubmission}
	}

	select {
	case <-ctx.Done():
		return gatherResult{id: id, err: ctx.Err(), kind: ErrKindContextCanceled}
	case res, ok := <-resultCh:
		if !ok {
			return gatherResult{id: id, err: errMapStageChannelClosed, kind: ErrKindMapStageFailed}
		}
		if res.Err != nil {
			return gatherResult{id: id, err: res.Err, kind: ErrKindMapStageFailed}
		}
		return gatherResult{id: id, dep: dep, stats: res.Stats}
	}
}

// computePlansLocked runs Coalesce (and, when eligible, DecideBroadcast)
// over gathered results and populates c.plans. Must be called with c.mu
// held.
//
// A single Coalesce pass covers every exchange that actually submitted a
// map stage: the byte matrix is summed across all of them, and the one
// resulting startIndices array is expanded into each exchange's own plan.
// This is the invariant contract between sibling exchanges of the same
// downstream operator — they must agree on post-shuffle partition
// boundaries to stay key-aligned, not coalesce independently.
func (c *Coordinator) computePlansLocked(results []gatherResult) (broadcastUsed bool, err error) {
	submitted := make([]gatherResult, 0, len(results))
	for _, r := range results {
		if !r.skipped {
			submitted = append(submitted, r)
		}
	}

	if c.cfg.IsTwoInputJoin && c.cfg.Broadcast.Enabled && len(results) == 2 && len(submitted) == 2 {
		return c.computeBroadcastEligiblePlansLocked(results, submitted)
	}

	return false, c.coalesceAcrossLocked(results, submitted)
}

// coalesceAcrossLocked computes a single startIndices array from every
// submitted (non-skipped) result's summed byte matrix and expands it into a
// plan for every result, skipped or not, since all share the same
// pre-shuffle partition count. With no submitted results at all, every
// exchange instead gets the trivial one-partition plan.
func (c *Coordinator) coalesceAcrossLocked(results, submitted []gatherResult) error {
	if len(submitted) == 0 {
		for _, r := range results {
			c.plans[r.id] = newTrivialPlan(r.dep.NumPreShufflePartitions())
		}
		return nil
	}

	stats := make([]MapOutputStatistics, len(submitted))
	for i, r := range submitted {
		stats[i] = r.stats
	}
	startIndices, err := Coalesce(stats, c.cfg.TargetBytes, c.cfg.MinPartitions)
	if err != nil {
		return newCoordinatorError(ErrKindInvariantViolation, "", err)
	}
	for _, r := range results {
		c.plans[r.id] = newCoalescePlan(r.dep.NumPreShufflePartitions(), startIndices)
	}
	return nil
}

// computeBroadcastEligiblePlansLocked decides, and then emits, the plan pair
// for a two-input join where both sides submitted statistics. submitted must
// have length 2, in registration order (left, right); results is the full
// (possibly identical) set of gathered results used for the coalesce
// fallback so any skipped exchange still gets a plan.
func (c *Coordinator) computeBroadcastEligiblePlansLocked(results, submitted []gatherResult) (bool, error) {
	left, right := submitted[0], submitted[1]
	leftBytes := sumBytes(left.stats)
	rightBytes := sumBytes(right.stats)
	leftM := left.dep.UpstreamPartitionCount()
	rightM := right.dep.UpstreamPartitionCount()

	broadcastLeft, m, ok := DecideBroadcast(c.cfg.Broadcast, leftBytes, rightBytes, leftM, rightM)
	if !ok {
		return false, c.coalesceAcrossLocked(results, submitted)
	}

	small, large := left, right
	if !broadcastLeft {
		small, large = right, left
	}
	c.plans[small.id] = newBroadcastSmallPlan(small.dep.NumPreShufflePartitions(), m)
	c.plans[large.id] = newBroadcastLargePlan(large.dep.NumPreShufflePartitions(), m)
	return true, nil
}

// report invokes the configured OnEstimation hook, if any, with rep as built
// by the caller (which has already stamped its Duration). The caller still
// holds c.mu, so OnEstimation must not call back into this Coordinator.
func (c *Coordinator) report(_ context.Context, rep EstimationReport) {
	if c.cfg.OnEstimation == nil {
		return
	}
	c.cfg.OnEstimation(rep)
}

func sumBytes(s MapOutputStatistics) uint64 {
	var total uint64
	for _, b := range s.BytesByPartition {
		total += b
	}
	return total
}
