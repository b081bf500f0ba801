// Package omx is the public SDK façade over the core: a thin wrapper
// exposing a clean API over internal/registry, internal/component, and
// internal/tunnel, grounded on the teacher's pkg/sdk/client.Client shape
// (an API interface plus a concrete Client, constructed with a Dial-style
// entry point) minus its gRPC dial step — there is no network boundary
// between this core and its applications (spec §2: "a process-local
// runtime"), so Open constructs the registry's loader goroutine directly
// instead of dialing a daemon socket.
package omx

import (
	"context"
	"fmt"

	"omxcore/internal/component"
	"omxcore/internal/omxerr"
	"omxcore/internal/registry"
	"omxcore/internal/registry/cache"
	"omxcore/internal/support/ilconfig"
	"omxcore/internal/tunnel"
)

// Re-exported so callers never need to import an internal package
// themselves to name these types.
type (
	Handle    = component.Runtime
	Callbacks = component.Callbacks
	Event     = component.Event
	Version   = component.Version
	Tunnel    = tunnel.Tunnel
)

const (
	EventCmdComplete               = component.EventCmdComplete
	EventError                     = component.EventError
	EventMark                      = component.EventMark
	EventPortSettingsChanged       = component.EventPortSettingsChanged
	EventBufferFlag                = component.EventBufferFlag
	EventResourcesAcquired         = component.EventResourcesAcquired
	EventComponentResumed          = component.EventComponentResumed
	EventDynamicResourcesAvailable = component.EventDynamicResourcesAvailable
	EventPortFormatDetected        = component.EventPortFormatDetected
	EventIndexSettingChanged       = component.EventIndexSettingChanged
	EventPortNeedsDisable          = component.EventPortNeedsDisable
	EventPortNeedsFlush            = component.EventPortNeedsFlush
)

// API is the surface applications are expected to code against, mirroring
// spec §4.1's loader operations plus the tunnel protocol. Client implements
// it; tests may substitute a fake.
type API interface {
	ComponentNameEnum(index int) (string, error)
	GetHandle(ctx context.Context, name string, appData any, callbacks Callbacks) (*Handle, error)
	FreeHandle(h *Handle) error
	SetupTunnel(ctx context.Context, out *Handle, outPort int, in *Handle, inPort int) (*Tunnel, error)
	TeardownTunnel(ctx context.Context, t *Tunnel) error
	ComponentOfRoleEnum(role string, index int) (string, error)
	RoleOfComponentEnum(name string, index int) (string, error)
}

// Client is the in-process SDK handle onto the singleton core.
type Client struct {
	core  *registry.Core
	cache *cache.Cache
}

var _ API = (*Client)(nil)

// Open takes an already loaded il-core resource configuration (spec §6), opens the probe
// cache, and brings the core loader up — the in-process equivalent of the
// teacher's client.NewUnix dial. cachePath may be empty to disable the
// probe cache.
func Open(ctx context.Context, cfg *ilconfig.Config, cachePath string) (*Client, error) {
	var c *cache.Cache
	if cachePath != "" {
		opened, err := cache.Open(cachePath)
		if err != nil {
			return nil, fmt.Errorf("open probe cache: %w", err)
		}
		c = opened
	}

	core := registry.Get()
	if err := core.Init(ctx, cfg, c); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize core: %w", err)
	}
	return &Client{core: core, cache: c}, nil
}

// Close tears the loader down and closes the probe cache. Any handles the
// caller obtained from GetHandle must already have been freed (spec §8
// boundary behaviour).
func (cl *Client) Close() error {
	err := cl.core.Deinit()
	if cerr := cl.cache.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// ListComponents enumerates every registered component name in load order
// (spec §8 scenario S1), translating NoMore to end-of-list rather than
// propagating it as an error.
func (cl *Client) ListComponents() ([]string, error) {
	var names []string
	for i := 0; ; i++ {
		name, err := cl.core.ComponentNameEnum(i)
		if err != nil {
			if omxerr.Of(err) == omxerr.NoMore {
				return names, nil
			}
			return names, err
		}
		names = append(names, name)
	}
}

// RolesOf enumerates the roles a registered component advertises (spec §8
// scenario S2).
func (cl *Client) RolesOf(name string) ([]string, error) {
	var roles []string
	for i := 0; ; i++ {
		role, err := cl.core.RoleOfComponentEnum(name, i)
		if err != nil {
			if omxerr.Of(err) == omxerr.NoMore {
				return roles, nil
			}
			return roles, err
		}
		roles = append(roles, role)
	}
}

// ComponentsWithRole enumerates every registered component name that
// advertises role (spec §8 scenario S2).
func (cl *Client) ComponentsWithRole(role string) ([]string, error) {
	var names []string
	for i := 0; ; i++ {
		name, err := cl.core.ComponentOfRoleEnum(role, i)
		if err != nil {
			if omxerr.Of(err) == omxerr.NoMore {
				return names, nil
			}
			return names, err
		}
		names = append(names, name)
	}
}

func (cl *Client) ComponentNameEnum(index int) (string, error) {
	return cl.core.ComponentNameEnum(index)
}

func (cl *Client) GetHandle(ctx context.Context, name string, appData any, callbacks Callbacks) (*Handle, error) {
	return cl.core.GetHandle(ctx, name, appData, callbacks)
}

func (cl *Client) FreeHandle(h *Handle) error {
	return cl.core.FreeHandle(h)
}

func (cl *Client) SetupTunnel(ctx context.Context, out *Handle, outPort int, in *Handle, inPort int) (*Tunnel, error) {
	return cl.core.SetupTunnel(ctx, out, outPort, in, inPort)
}

func (cl *Client) TeardownTunnel(ctx context.Context, t *Tunnel) error {
	return cl.core.TeardownTunnel(ctx, t)
}

func (cl *Client) ComponentOfRoleEnum(role string, index int) (string, error) {
	return cl.core.ComponentOfRoleEnum(role, index)
}

func (cl *Client) RoleOfComponentEnum(name string, index int) (string, error) {
	return cl.core.RoleOfComponentEnum(name, index)
}
