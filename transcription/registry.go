package transcription

import "github.com/kbukum/whispersrt/provider"

// NewRegistry creates a new provider registry for transcription providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// ManagerOption configures the transcription provider manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	registry *provider.Registry[Provider]
	selector provider.Selector[Provider]
}

// WithSelector sets the provider selection strategy for the manager.
func WithSelector(s provider.Selector[Provider]) ManagerOption {
	return func(c *managerConfig) {
		c.selector = s
	}
}

// WithPriority selects the first available provider from names.
func WithPriority(names ...string) ManagerOption {
	return WithSelector(&provider.PrioritySelector[Provider]{Priority: names})
}

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(r *provider.Registry[Provider]) ManagerOption {
	return func(c *managerConfig) {
		c.registry = r
	}
}

// NewManager creates a new provider manager for transcription providers.
func NewManager(opts ...ManagerOption) *provider.Manager[Provider] {
	cfg := &managerConfig{
		selector: &provider.PrioritySelector[Provider]{},
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	return provider.NewManager(cfg.registry, cfg.selector)
}
