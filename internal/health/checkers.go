// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
)

// Pinger is implemented by the Redis affinity store.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// AffinityStoreChecker reports the shared route-affinity store. A failing
// store makes the service unready: replicas would stop agreeing on routes.
type AffinityStoreChecker struct {
	store Pinger
}

// NewAffinityStoreChecker wraps store; a nil store reports "in-memory".
func NewAffinityStoreChecker(store Pinger) *AffinityStoreChecker {
	return &AffinityStoreChecker{store: store}
}

func (c *AffinityStoreChecker) Name() string { return "affinity_store" }

func (c *AffinityStoreChecker) Check(ctx context.Context) CheckResult {
	if c.store == nil {
		return CheckResult{Status: StatusHealthy, Message: "in-memory"}
	}
	if err := c.store.HealthCheck(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "redis unreachable"}
	}
	return CheckResult{Status: StatusHealthy, Message: "redis"}
}

// EgressPoolChecker describes the configured route pool.
type EgressPoolChecker struct {
	size int
}

// NewEgressPoolChecker reports a pool of size routes.
func NewEgressPoolChecker(size int) *EgressPoolChecker {
	return &EgressPoolChecker{size: size}
}

func (c *EgressPoolChecker) Name() string { return "egress_pool" }

func (c *EgressPoolChecker) Check(context.Context) CheckResult {
	if c.size == 0 {
		return CheckResult{Status: StatusHealthy, Message: "direct egress"}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d route(s)", c.size)}
}
