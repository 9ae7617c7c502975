package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const leaseTTLSeconds = 30

// ServiceRegistry announces the storefront in etcd so the edge can find it.
type ServiceRegistry struct {
	client *clientv3.Client
	config *config.EtcdConfig
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func (i *ServiceInstance) addr() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

func NewServiceRegistry(cfg *config.EtcdConfig) (*ServiceRegistry, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceRegistry{
		client: cli,
		config: cfg,
	}, nil
}

func (r *ServiceRegistry) key(instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s", r.config.Prefix, instance.Name, instance.addr())
}

// Register puts the instance under a kept-alive lease, so a dead process
// drops out of etcd on its own.
func (r *ServiceRegistry) Register(ctx context.Context, instance *ServiceInstance) error {
	lease, err := r.client.Grant(ctx, leaseTTLSeconds)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	_, err = r.client.Put(ctx, r.key(instance), instance.addr(), clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, kaerr := r.client.KeepAlive(ctx, lease.ID)
	if kaerr != nil {
		return fmt.Errorf("failed to keep alive: %w", kaerr)
	}

	go func() {
		for ka := range ch {
			_ = ka
		}
	}()

	return nil
}

func (r *ServiceRegistry) Deregister(ctx context.Context, instance *ServiceInstance) error {
	if _, err := r.client.Delete(ctx, r.key(instance)); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}

func (r *ServiceRegistry) Close() error {
	return r.client.Close()
}
