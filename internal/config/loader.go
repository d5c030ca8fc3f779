package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. HEALTHROUTE_PROBE_TIMEOUT=3s.
const EnvPrefix = "HEALTHROUTE"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Path is the config file location. Empty searches ./configs and the working directory.
type Path string

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	// .env is optional, a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetDefaultConfig 返回默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Namespace: "default",
		Groups: []GroupConfig{
			{Name: "node-app-primary-service", Selector: "app=node-app-primary"},
			{Name: "node-app-secondary-service", Selector: "app=node-app-secondary"},
			{Name: "node-app-failover-service", Selector: "app=node-app-failover"},
		},
		Probe: ProbeConfig{
			Port:     3000,
			Path:     "/health",
			Timeout:  2 * time.Second,
			Interval: 30 * time.Second,
			Workers:  1,
		},
		Registry: RegistryConfig{Type: "kubernetes"},
		Store: StoreConfig{
			Type:       "kubernetes",
			Name:       "healthy-pods-configmap",
			Field:      "healthy_pods",
			MaxRetries: 5,
		},
		Dispatch: DispatchConfig{
			Port:            3000,
			Path:            "/",
			Timeout:         5 * time.Second,
			RefreshInterval: 30 * time.Second,
			Workers:         1,
			Rate:            1,
			Burst:           1,
		},
		Server: ServerConfig{
			HTTPPort: ":8080",
			GRPCPort: ":9091",
		},
		Log:     LogConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{Insecure: true, Interval: 15 * time.Second},
		Consul: ConsulConfig{
			Address: "127.0.0.1:8500",
			Scheme:  "http",
		},
		Etcd: EtcdConfig{
			Endpoints:   []string{"127.0.0.1:2379"},
			DialTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379"},
	}
}

// setDefaults registers every default with viper so env overrides resolve for all keys.
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	groups := make([]map[string]any, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, map[string]any{"name": g.Name, "selector": g.Selector})
	}

	v.SetDefault("namespace", d.Namespace)
	v.SetDefault("groups", groups)

	v.SetDefault("probe.port", d.Probe.Port)
	v.SetDefault("probe.path", d.Probe.Path)
	v.SetDefault("probe.timeout", d.Probe.Timeout)
	v.SetDefault("probe.interval", d.Probe.Interval)
	v.SetDefault("probe.workers", d.Probe.Workers)

	v.SetDefault("registry.type", d.Registry.Type)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.name", d.Store.Name)
	v.SetDefault("store.field", d.Store.Field)
	v.SetDefault("store.max_retries", d.Store.MaxRetries)

	v.SetDefault("dispatch.port", d.Dispatch.Port)
	v.SetDefault("dispatch.path", d.Dispatch.Path)
	v.SetDefault("dispatch.timeout", d.Dispatch.Timeout)
	v.SetDefault("dispatch.refresh_interval", d.Dispatch.RefreshInterval)
	v.SetDefault("dispatch.workers", d.Dispatch.Workers)
	v.SetDefault("dispatch.rate", d.Dispatch.Rate)
	v.SetDefault("dispatch.burst", d.Dispatch.Burst)

	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.grpc_port", d.Server.GRPCPort)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.otlp_endpoint", d.Metrics.OTLPEndpoint)
	v.SetDefault("metrics.insecure", d.Metrics.Insecure)
	v.SetDefault("metrics.interval", d.Metrics.Interval)

	v.SetDefault("kubernetes.kubeconfig", d.Kubernetes.Kubeconfig)
	v.SetDefault("kubernetes.context", d.Kubernetes.Context)

	v.SetDefault("consul.address", d.Consul.Address)
	v.SetDefault("consul.scheme", d.Consul.Scheme)
	v.SetDefault("consul.token", d.Consul.Token)
	v.SetDefault("consul.datacenter", d.Consul.Datacenter)

	v.SetDefault("etcd.endpoints", d.Etcd.Endpoints)
	v.SetDefault("etcd.dial_timeout", d.Etcd.DialTimeout)
	v.SetDefault("etcd.username", d.Etcd.Username)
	v.SetDefault("etcd.password", d.Etcd.Password)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
}

// Validate checks the invariants the prober and dispatcher rely on.
func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("%w: at least one group is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("%w: groups[%d].name is required", ErrInvalid, i)
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate group name %q", ErrInvalid, g.Name)
		}
		seen[g.Name] = true
	}

	if c.Probe.Interval <= 0 || c.Probe.Timeout <= 0 {
		return fmt.Errorf("%w: probe.timeout and probe.interval must be positive", ErrInvalid)
	}
	if c.Probe.Timeout >= c.Probe.Interval {
		return fmt.Errorf("%w: probe.timeout (%s) must be less than probe.interval (%s)",
			ErrInvalid, c.Probe.Timeout, c.Probe.Interval)
	}
	if c.Probe.Workers < 1 {
		return fmt.Errorf("%w: probe.workers must be at least 1", ErrInvalid)
	}
	if c.Probe.Port <= 0 || c.Dispatch.Port <= 0 {
		return fmt.Errorf("%w: probe.port and dispatch.port must be positive", ErrInvalid)
	}

	if c.Store.Name == "" || c.Store.Field == "" {
		return fmt.Errorf("%w: store.name and store.field are required", ErrInvalid)
	}
	if c.Store.MaxRetries < 1 {
		return fmt.Errorf("%w: store.max_retries must be at least 1", ErrInvalid)
	}

	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("%w: dispatch.timeout must be positive", ErrInvalid)
	}
	if c.Dispatch.RefreshInterval <= 0 {
		return fmt.Errorf("%w: dispatch.refresh_interval must be positive", ErrInvalid)
	}
	if c.Dispatch.Workers < 1 {
		return fmt.Errorf("%w: dispatch.workers must be at least 1", ErrInvalid)
	}
	if c.Dispatch.Rate <= 0 || c.Dispatch.Burst < 1 {
		return fmt.Errorf("%w: dispatch.rate must be positive and dispatch.burst at least 1", ErrInvalid)
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
