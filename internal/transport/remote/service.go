// Package remote carries the fabric over gRPC in a star: every worker
// holds one bidirectional stream to the coordinator, and workers never
// talk to each other.
package remote

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/nemanja-m/scatter/pkg/core"
)

// ServiceName is the Exchange service as registered with health checks.
const ServiceName = "scatter.transport.v1.Exchange"

// Metadata keys. The worker announces its rank when connecting; the
// coordinator answers with the plan in the response header.
const (
	RankKey              = "x-scatter-rank"
	runIDKey             = "x-scatter-run-id"
	unitsKey             = "x-scatter-units"
	strategyKey          = "x-scatter-strategy"
	transformKey         = "x-scatter-transform"
	maxSegmentKey        = "x-scatter-max-segment"
	timedKey             = "x-scatter-timed"
	completionTimeoutKey = "x-scatter-completion-timeout"
)

// EncodePlan renders plan as response header metadata.
func EncodePlan(plan core.Plan) metadata.MD {
	return metadata.Pairs(
		runIDKey, plan.RunID.String(),
		unitsKey, strconv.Itoa(plan.Units),
		strategyKey, plan.Strategy,
		transformKey, plan.Transform,
		maxSegmentKey, strconv.Itoa(plan.MaxSegmentLength),
		timedKey, strconv.FormatBool(plan.Timed),
		completionTimeoutKey, plan.CompletionTimeout.String(),
	)
}

// DecodePlan parses the plan sent by the coordinator.
func DecodePlan(md metadata.MD) (core.Plan, error) {
	get := func(key string) (string, error) {
		values := md.Get(key)
		if len(values) == 0 {
			return "", fmt.Errorf("plan header %s missing", key)
		}
		return values[0], nil
	}

	var (
		plan core.Plan
		raw  string
		err  error
	)
	if raw, err = get(runIDKey); err != nil {
		return core.Plan{}, err
	}
	if plan.RunID, err = uuid.Parse(raw); err != nil {
		return core.Plan{}, fmt.Errorf("plan header %s: %w", runIDKey, err)
	}
	if raw, err = get(unitsKey); err != nil {
		return core.Plan{}, err
	}
	if plan.Units, err = strconv.Atoi(raw); err != nil {
		return core.Plan{}, fmt.Errorf("plan header %s: %w", unitsKey, err)
	}
	if plan.Strategy, err = get(strategyKey); err != nil {
		return core.Plan{}, err
	}
	if plan.Transform, err = get(transformKey); err != nil {
		return core.Plan{}, err
	}
	if raw, err = get(maxSegmentKey); err != nil {
		return core.Plan{}, err
	}
	if plan.MaxSegmentLength, err = strconv.Atoi(raw); err != nil {
		return core.Plan{}, fmt.Errorf("plan header %s: %w", maxSegmentKey, err)
	}
	if raw, err = get(timedKey); err != nil {
		return core.Plan{}, err
	}
	if plan.Timed, err = strconv.ParseBool(raw); err != nil {
		return core.Plan{}, fmt.Errorf("plan header %s: %w", timedKey, err)
	}
	if raw, err = get(completionTimeoutKey); err != nil {
		return core.Plan{}, err
	}
	if plan.CompletionTimeout, err = time.ParseDuration(raw); err != nil {
		return core.Plan{}, fmt.Errorf("plan header %s: %w", completionTimeoutKey, err)
	}
	return plan, nil
}
