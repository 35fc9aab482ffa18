package job

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/service"
)

// RoleExpiryJob runs the expiry guard once, outside of any request.
type RoleExpiryJob struct {
	entitlements service.EntitlementService
}

func NewRoleExpiryJob(entitlements service.EntitlementService) *RoleExpiryJob {
	return &RoleExpiryJob{entitlements: entitlements}
}

func (j *RoleExpiryJob) Name() string { return "role.expiry" }

func (j *RoleExpiryJob) Run(ctx context.Context) error {
	if j == nil || j.entitlements == nil {
		return fmt.Errorf("role expiry job dependencies not configured / 角色过期任务依赖未配置")
	}
	return j.entitlements.Reconcile(ctx)
}
