package registry

import "context"

// Phase is the lifecycle phase a member reports to the registry.
type Phase string

// Phase is the member lifecycle phase. Only running members are probed.
const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseUnknown   Phase = "Unknown"
)

// Member 服务实例信息
type Member struct {
	Address string // host or IP, without port
	Phase   Phase
}

// Running reports whether the member should be probed.
func (m Member) Running() bool {
	return m.Phase == PhaseRunning
}

// Registry 成员枚举接口
type Registry interface {
	// Members lists the members matching selector in namespace, in the
	// order the backend returns them.
	Members(ctx context.Context, namespace, selector string) ([]Member, error)
}
