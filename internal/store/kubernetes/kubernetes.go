// Package kubernetes stores the snapshot record in a ConfigMap. The
// ConfigMap's resourceVersion is the record version.
package kubernetes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/heytom-labs/heytom-healthroute/internal/clients"
	"github.com/heytom-labs/heytom-healthroute/internal/config"
	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

func init() {
	store.RegisterFactory("kubernetes", func(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
		client, err := clients.Kubernetes(cfg.Kubernetes)
		if err != nil {
			return nil, err
		}
		return New(client, cfg.Namespace, cfg.Store.Name), nil
	})
}

// Store is a ConfigMap-backed store.Store.
type Store struct {
	client    kubernetes.Interface
	namespace string
	name      string
}

// New creates a store for ConfigMap namespace/name.
func New(client kubernetes.Interface, namespace, name string) *Store {
	return &Store{client: client, namespace: namespace, name: name}
}

// Read returns the ConfigMap data.
func (s *Store) Read(ctx context.Context) (*store.Record, error) {
	cm, err := s.client.CoreV1().ConfigMaps(s.namespace).Get(ctx, s.name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("kubernetes: get configmap %s/%s: %w", s.namespace, s.name, err)
	}

	fields := make(map[string]string, len(cm.Data))
	for k, v := range cm.Data {
		fields[k] = v
	}
	return &store.Record{Fields: fields, Version: versionOf(cm)}, nil
}

// Write replaces the ConfigMap data. Labels, annotations and binary data of
// an existing ConfigMap are preserved.
func (s *Store) Write(ctx context.Context, rec *store.Record) error {
	configMaps := s.client.CoreV1().ConfigMaps(s.namespace)

	if rec.Version == "" {
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: s.name, Namespace: s.namespace},
			Data:       rec.Fields,
		}
		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			if apierrors.IsAlreadyExists(err) {
				return store.ErrConflict
			}
			return fmt.Errorf("kubernetes: create configmap %s/%s: %w", s.namespace, s.name, err)
		}
		return nil
	}

	cm, err := configMaps.Get(ctx, s.name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("kubernetes: get configmap %s/%s: %w", s.namespace, s.name, err)
	}
	if versionOf(cm) != rec.Version {
		return store.ErrConflict
	}

	cm.Data = rec.Fields
	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		if apierrors.IsConflict(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("kubernetes: update configmap %s/%s: %w", s.namespace, s.name, err)
	}
	return nil
}

// Close is a no-op; the clientset holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

// versionOf never returns an empty token for an existing ConfigMap, which
// would otherwise read as "create".
func versionOf(cm *corev1.ConfigMap) string {
	return "rv:" + cm.ResourceVersion
}

var _ store.Store = (*Store)(nil)
