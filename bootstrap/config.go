package bootstrap

import "github.com/kbukum/whispersrt/config"

// Config is what App needs from an application config. Embedding
// config.ServiceConfig by value provides all three methods; a type that
// adds sections overrides ApplyDefaults and Validate to cover them:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Conversion conversion.Config `yaml:"conversion" mapstructure:"conversion"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
