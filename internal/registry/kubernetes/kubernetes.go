// Package kubernetes enumerates members as pods matching a label selector.
package kubernetes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/registry"
)

func init() {
	registry.RegisterFactory("kubernetes", func(cfg *config.Config, log zerolog.Logger) (registry.Registry, error) {
		client, err := clients.Kubernetes(cfg.Kubernetes)
		if err != nil {
			return nil, err
		}
		return NewRegistry(client), nil
	})
}

// Registry lists pods through the Kubernetes API.
type Registry struct {
	client kubernetes.Interface
}

// NewRegistry 创建Kubernetes注册中心
func NewRegistry(client kubernetes.Interface) *Registry {
	return &Registry{client: client}
}

// Members returns one member per pod, addressed by pod IP. Pods that have
// not been assigned an IP yet are reported with an empty address and their
// phase as is.
func (r *Registry) Members(ctx context.Context, namespace, selector string) ([]registry.Member, error) {
	pods, err := r.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("kubernetes: list pods %s in %s: %w", selector, namespace, err)
	}

	members := make([]registry.Member, 0, len(pods.Items))
	for _, pod := range pods.Items {
		members = append(members, registry.Member{
			Address: pod.Status.PodIP,
			Phase:   registry.Phase(pod.Status.Phase),
		})
	}
	return members, nil
}

var _ registry.Registry = (*Registry)(nil)
