// Package registry implements the core loader & registry (spec §4.1): a
// process-wide singleton, lazily constructed (spec §9 "global singleton
// state → explicit Core object... initialise lazily via a once-guard"),
// that scans configured plugin directories, probes each shared library for
// its roles, and manufactures component instances on demand. All public
// operations are serialised through one dedicated loader goroutine reached
// over a channel — the Go-native rendering of spec §4.1's "message queue +
// semaphore", grounded on daemon.Run's errgroup-joined goroutine lifecycle.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"plugin"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"omxcore/internal/component"
	"omxcore/internal/omxerr"
	"omxcore/internal/registry/cache"
	"omxcore/internal/support/ilconfig"
)

// EntryPointSymbol is the well-known exported symbol every component
// shared library must provide (spec §4.1 "looks up the well-known
// entry-point symbol").
const EntryPointSymbol = "OMXComponentInit"

// EntryPointFunc is the signature EntryPointSymbol must have. `plugin.Open`
// (stdlib) stands in for the platform's dlopen — see DESIGN.md for why no
// third-party dep covers this.
type EntryPointFunc func() (*Descriptor, error)

// Descriptor is what a component's entry point hands back: its identity
// plus a constructor for fresh instances (spec §4.1 "allocates a fresh
// handle struct, calls the entry point... installs the vtable").
type Descriptor struct {
	Name    string
	Version component.Version
	Roles   []string
	New     func() (*component.Runtime, error)
}

// entry is one registry row: the probed descriptor plus the library path
// it came from (spec's "name → dl-path, dl-name, entry-point, role-list").
// New is nil when the row was populated from the probe cache rather than
// a live dlopen; resolveEntry fills it in the first time it's needed.
type entry struct {
	Descriptor
	Path string
}

// resolveEntry returns e with a non-nil New, dlopen'ing path only if the
// cache-populated row doesn't already have one.
func resolveEntry(e entry) (entry, error) {
	if e.New != nil {
		return e, nil
	}
	desc, err := probe(e.Path)
	if err != nil {
		return entry{}, err
	}
	e.Descriptor = *desc
	return e, nil
}

// State is the loader's own lifecycle (spec §4.1 "Stopped → Starting →
// Started → Stopped").
type State uint8

const (
	StateStopped State = iota
	StateStarting
	StateStarted
)

// soSuffix matches the platform SONAME convention *.so.<major>.<minor>.<patch>
// spec §8 scenario S1 calls for, rejecting any non-numeric trailing
// component (e.g. "p3.so.0.0.0T" is filtered out).
var soSuffix = regexp.MustCompile(`\.so\.\d+\.\d+\.\d+$`)

// Core is the loader/registry singleton.
type Core struct {
	state State

	queue  chan func()
	cancel context.CancelFunc
	done   chan struct{}

	entries []entry
	live    map[*component.Runtime]entry

	cache *cache.Cache
}

var (
	instance     *Core
	instanceOnce sync.Once
)

// Get returns the process-wide Core, constructing it on first call (spec
// §9's once-guarded lazy singleton). It does not scan for plugins — call
// Init for that.
func Get() *Core {
	instanceOnce.Do(func() {
		instance = &Core{live: make(map[*component.Runtime]entry)}
	})
	return instance
}

// post runs fn on the loader goroutine and blocks for its result — the
// channel-based stand-in for "post a tagged message, block on a
// semaphore" (spec §4.1, §5).
func (c *Core) post(fn func()) {
	done := make(chan struct{})
	c.queue <- func() {
		fn()
		close(done)
	}
	<-done
}

func (c *Core) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-c.queue:
			task()
		}
	}
}

// Init scans the configured plugin directories and populates the
// registry. A second Init while already Started is a no-op returning
// success (spec §4.1's state machine).
func (c *Core) Init(ctx context.Context, cfg *ilconfig.Config, cacheDB *cache.Cache) error {
	if c.state == StateStarted {
		return nil
	}
	c.state = StateStarting
	c.cache = cacheDB

	c.queue = make(chan func())
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error { return c.loop(gctx) })
	go func() {
		defer close(c.done)
		_ = g.Wait()
	}()

	var scanErr error
	c.post(func() {
		scanErr = c.scan(cfg)
	})
	if scanErr != nil {
		c.state = StateStopped
		cancel()
		return scanErr
	}

	c.state = StateStarted
	return nil
}

// Deinit tears the loader down, releasing the goroutine. Live handles must
// already have been freed via FreeHandle (spec §8 boundary behaviour:
// "FreeHandle must tear tunnels down before unloading").
func (c *Core) Deinit() error {
	if c.state != StateStarted {
		return nil
	}
	c.cancel()
	<-c.done
	c.state = StateStopped
	c.entries = nil
	return nil
}

// scan walks every configured directory once, probing each matching file.
// Runs on the loader goroutine.
func (c *Core) scan(cfg *ilconfig.Config) error {
	seen := make(map[string]bool)
	for _, dir := range cfg.ILCore.ComponentPaths {
		paths, err := listPlugins(dir)
		if err != nil {
			slog.Error("scan plugin directory failed", "dir", dir, "err", err)
			continue
		}
		sort.Strings(paths)
		for _, path := range paths {
			desc, err := c.probeWithCache(path)
			if err != nil {
				slog.Error("probe plugin failed, skipping", "path", path, "err", err)
				continue
			}
			if desc.Name == "" || len(desc.Roles) == 0 {
				slog.Error("plugin reported no name or zero roles, skipping", "path", path)
				continue
			}
			if seen[desc.Name] {
				slog.Warn("duplicate component name, ignoring later occurrence", "name", desc.Name, "path", path)
				continue
			}
			seen[desc.Name] = true
			c.entries = append(c.entries, entry{Descriptor: *desc, Path: path})
		}
	}
	return nil
}

func listPlugins(dir string) ([]string, error) {
	return globSharedObjects(dir)
}

// probeWithCache consults the mtime-gated probe cache before falling
// through to a real probe. Go's plugin.Symbol can't be serialised, so a
// cache hit can't hand back a working New constructor — but scan doesn't
// need one. It only needs Name/Version/Roles to populate the registry
// listing (ComponentNameEnum, ComponentOfRoleEnum, RoleOfComponentEnum all
// work off those three fields alone); the library isn't actually dlopen'd
// until GetHandle instantiates it, at which point resolveEntry does the
// real probe this function skipped. A cache hit therefore returns a
// Descriptor with a nil New, and scan never calls plugin.Open for it.
func (c *Core) probeWithCache(path string) (*Descriptor, error) {
	info, statErr := os.Stat(path)
	var modTime int64
	if statErr == nil {
		modTime = info.ModTime().UnixNano()
	}

	if c.cache != nil && statErr == nil {
		if cached, ok, err := c.cache.Lookup(path, modTime); err == nil && ok {
			slog.Debug("probe cache hit, deferring dlopen to first GetHandle", "path", path, "name", cached.Name)
			return &Descriptor{
				Name: cached.Name,
				Version: component.Version{
					Major:    cached.Version[0],
					Minor:    cached.Version[1],
					Revision: cached.Version[2],
					Step:     cached.Version[3],
				},
				Roles: cached.Roles,
			}, nil
		}
	}

	desc, err := probe(path)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && statErr == nil {
		_ = c.cache.Store(path, cache.Probe{
			Name:    desc.Name,
			Version: [4]uint32{desc.Version.Major, desc.Version.Minor, desc.Version.Revision, desc.Version.Step},
			Roles:   desc.Roles,
			ModTime: modTime,
		})
	}
	return desc, nil
}

// probe dlopen's (plugin.Open's) the library, calls its entry point, and
// returns its descriptor. Roles are already fully enumerated by the
// descriptor's New()'s own construction in this Go rendering — the real
// OpenMAX probe loop (call ComponentRoleEnum until NoMore) is exercised by
// component.Runtime.ComponentRoleEnum once an instance exists; probing
// here only needs the descriptor's static Roles list, which New()'s
// backing Runtime also exposes via ComponentRoleEnum for symmetry.
func probe(path string) (*Descriptor, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", omxerr.New(omxerr.InsufficientResources), path, err)
	}
	sym, err := p.Lookup(EntryPointSymbol)
	if err != nil {
		return nil, fmt.Errorf("lookup %s in %s: %w", EntryPointSymbol, path, err)
	}
	entryFn, ok := sym.(EntryPointFunc)
	if !ok {
		return nil, fmt.Errorf("%s in %s has the wrong signature", EntryPointSymbol, path)
	}
	return entryFn()
}
