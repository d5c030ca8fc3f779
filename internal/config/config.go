package config

import (
	"time"
)

// Config 应用配置结构
type Config struct {
	Namespace  string           `mapstructure:"namespace"`
	Groups     []GroupConfig    `mapstructure:"groups"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Store      StoreConfig      `mapstructure:"store"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`
	Consul     ConsulConfig     `mapstructure:"consul"`
	Etcd       EtcdConfig       `mapstructure:"etcd"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Static     StaticConfig     `mapstructure:"static"`
}

// GroupConfig describes one service group. Groups are tried in the order they are listed.
type GroupConfig struct {
	Name     string `mapstructure:"name"`     // service name, snapshot key
	Selector string `mapstructure:"selector"` // member selector, meaning depends on registry type
}

// ProbeConfig 健康检查配置
type ProbeConfig struct {
	Port     int           `mapstructure:"port"`
	Path     string        `mapstructure:"path"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval time.Duration `mapstructure:"interval"`
	Workers  int           `mapstructure:"workers"` // 1 probes members sequentially
}

// RegistryConfig selects the member enumeration backend.
type RegistryConfig struct {
	Type string `mapstructure:"type"` // kubernetes, consul, static
}

// StoreConfig selects the shared snapshot store backend and the record in it.
type StoreConfig struct {
	Type       string `mapstructure:"type"` // kubernetes, consul, etcd, redis
	Name       string `mapstructure:"name"`
	Field      string `mapstructure:"field"`
	MaxRetries int    `mapstructure:"max_retries"` // attempts on version conflict
}

// DispatchConfig 流量分发配置
type DispatchConfig struct {
	Port            int           `mapstructure:"port"`
	Path            string        `mapstructure:"path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Workers         int           `mapstructure:"workers"`
	Rate            float64       `mapstructure:"rate"` // requests per second across all workers
	Burst           int           `mapstructure:"burst"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `mapstructure:"http_port"`
	GRPCPort string `mapstructure:"grpc_port"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json
}

// MetricsConfig configures the OTLP metric exporter. An empty endpoint disables export.
type MetricsConfig struct {
	OTLPEndpoint string        `mapstructure:"otlp_endpoint"`
	Insecure     bool          `mapstructure:"insecure"`
	Interval     time.Duration `mapstructure:"interval"`
}

// KubernetesConfig holds cluster access settings. Empty kubeconfig uses in-cluster config.
type KubernetesConfig struct {
	Kubeconfig string `mapstructure:"kubeconfig"`
	Context    string `mapstructure:"context"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Address    string `mapstructure:"address"`
	Scheme     string `mapstructure:"scheme"`
	Token      string `mapstructure:"token"`
	Datacenter string `mapstructure:"datacenter"`
}

// EtcdConfig etcd配置
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StaticConfig lists fixed members per selector for the static registry.
type StaticConfig struct {
	Members []StaticMembers `mapstructure:"members"`
}

// StaticMembers is the fixed address list returned for one selector.
type StaticMembers struct {
	Selector  string   `mapstructure:"selector"`
	Addresses []string `mapstructure:"addresses"`
}

// GroupNames returns the configured group names in priority order.
func (c *Config) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return names
}
