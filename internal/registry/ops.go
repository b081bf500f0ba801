package registry

import (
	"context"
	"fmt"

	"omxcore/internal/component"
	"omxcore/internal/omxerr"
	"omxcore/internal/tunnel"
)

// ComponentNameEnum returns the index'th registered component name, in the
// stable order produced by Init's scan (spec §8 invariant 5: repeated
// calls with the same index are idempotent). index == len(entries) (i.e.
// one past the end) yields NoMore.
func (c *Core) ComponentNameEnum(index int) (string, error) {
	var name string
	var err error
	c.post(func() {
		if index < 0 || index >= len(c.entries) {
			err = omxerr.New(omxerr.NoMore)
			return
		}
		name = c.entries[index].Name
	})
	return name, err
}

// GetHandle instantiates the named component, wiring the given app-level
// callbacks and opaque appData (spec §4.1's "allocate a fresh handle
// struct... install the vtable").
func (c *Core) GetHandle(ctx context.Context, name string, appData any, callbacks component.Callbacks) (*component.Runtime, error) {
	var e entry
	var found bool
	c.post(func() {
		for _, cand := range c.entries {
			if cand.Name == name {
				e, found = cand, true
				return
			}
		}
	})
	if !found {
		return nil, omxerr.Wrap(omxerr.ComponentNotFound, fmt.Errorf("%s", name))
	}

	e, err := resolveEntry(e)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", name, err)
	}
	c.post(func() {
		for i := range c.entries {
			if c.entries[i].Name == name {
				c.entries[i] = e
				break
			}
		}
	})

	r, err := e.New()
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", name, err)
	}
	if err := r.SetCallbacks(callbacks, appData); err != nil {
		return nil, err
	}
	r.Start(ctx)

	c.post(func() {
		c.live[r] = e
	})
	return r, nil
}

// FreeHandle releases a handle obtained from GetHandle. Any tunnels on the
// handle's ports must already have been torn down by the caller (spec §8
// boundary behaviour).
func (c *Core) FreeHandle(r *component.Runtime) error {
	if err := r.ComponentDeInit(); err != nil {
		return err
	}
	c.post(func() {
		delete(c.live, r)
	})
	return nil
}

// SetupTunnel negotiates a tunnel between two live handles, delegating to
// internal/tunnel.Setup.
func (c *Core) SetupTunnel(ctx context.Context, out *component.Runtime, outPort int, in *component.Runtime, inPort int) (*tunnel.Tunnel, error) {
	return tunnel.Setup(ctx, out, outPort, in, inPort)
}

// TeardownTunnel tears a tunnel down, delegating to internal/tunnel.Teardown.
func (c *Core) TeardownTunnel(ctx context.Context, t *tunnel.Tunnel) error {
	return tunnel.Teardown(ctx, t)
}

// ComponentOfRoleEnum returns the index'th registered component name that
// supports role, in registry order.
func (c *Core) ComponentOfRoleEnum(role string, index int) (string, error) {
	var name string
	var err error
	c.post(func() {
		matched := 0
		for _, e := range c.entries {
			if !hasRole(e.Roles, role) {
				continue
			}
			if matched == index {
				name = e.Name
				return
			}
			matched++
		}
		err = omxerr.New(omxerr.NoMore)
	})
	return name, err
}

// RoleOfComponentEnum returns the index'th role name of the named
// component (mirrors component.Runtime.ComponentRoleEnum at the registry
// level, without needing a live instance).
func (c *Core) RoleOfComponentEnum(name string, index int) (string, error) {
	var role string
	var err error
	c.post(func() {
		for _, e := range c.entries {
			if e.Name != name {
				continue
			}
			if index < 0 || index >= len(e.Roles) {
				err = omxerr.New(omxerr.NoMore)
				return
			}
			role = e.Roles[index]
			return
		}
		err = omxerr.Wrap(omxerr.ComponentNotFound, fmt.Errorf("%s", name))
	})
	return role, err
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
