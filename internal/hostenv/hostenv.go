// Package hostenv detects whether the process runs inside the hosting
// environment that diagnostics logging targets, and where that host keeps
// its home directory.
package hostenv

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Context answers the two questions diagnostics registration asks of the host.
type Context interface {
	// IsRunningInTargetEnvironment reports whether the host is the managed
	// web hosting environment.
	IsRunningInTargetEnvironment() bool
	// HomeDirectory returns the host's home directory; log files live below it.
	HomeDirectory() string
}

// Env is the host context read from environment variables.
type Env struct {
	SiteName   string `env:"WEBSITE_SITE_NAME"`
	Home       string `env:"HOME"`
	InstanceID string `env:"WEBSITE_INSTANCE_ID"`
}

// FromEnvironment reads the host context from the process environment.
func FromEnvironment() (*Env, error) {
	return parse(env.Options{})
}

// FromMap reads the host context from vars instead of the process environment.
func FromMap(vars map[string]string) (*Env, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, fmt.Errorf("parse host environment: %w", err)
	}
	return &e, nil
}

// IsRunningInTargetEnvironment reports whether both the site name and the home
// directory are set.
func (e *Env) IsRunningInTargetEnvironment() bool {
	return e != nil && e.SiteName != "" && e.Home != ""
}

// HomeDirectory returns the HOME variable.
func (e *Env) HomeDirectory() string {
	if e == nil {
		return ""
	}
	return e.Home
}

// Static is a fixed host context.
type Static struct {
	Running bool
	Home    string
}

// IsRunningInTargetEnvironment returns s.Running.
func (s Static) IsRunningInTargetEnvironment() bool { return s.Running }

// HomeDirectory returns s.Home.
func (s Static) HomeDirectory() string { return s.Home }

// Detection modes accepted by Override.
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// Override applies a configured detection mode and home directory to base.
// ModeAuto keeps base's answer; an empty home keeps base's home.
func Override(base Context, mode, home string) Context {
	if home == "" && base != nil {
		home = base.HomeDirectory()
	}
	switch mode {
	case ModeAlways:
		return Static{Running: true, Home: home}
	case ModeNever:
		return Static{Running: false, Home: home}
	default:
		if base == nil {
			return Static{Home: home}
		}
		return Static{Running: base.IsRunningInTargetEnvironment(), Home: home}
	}
}
