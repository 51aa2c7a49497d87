package bootstrap

import (
	"github.com/kbukum/riv/config"
)

// Config is the constraint for application configuration types. Any
// struct embedding config.ServiceConfig satisfies it via promoted
// methods, as long as its own ApplyDefaults and Validate call through.
//
//	type ServeConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Server server.Config `mapstructure:"server"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
