package clients

import (
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// Etcd creates an etcd v3 client. The client is safe for concurrent use and
// must be closed by the caller.
func Etcd(cfg config.EtcdConfig) (*clientv3.Client, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return c, nil
}
