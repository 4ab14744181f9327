// Package assets keeps a registry of asset types and loaded assets, and
// reloads assets whose files change on disk.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-gfx/engine/core"
)

var (
	ErrUnknownType   = errors.New("unknown asset type")
	ErrDuplicateType = errors.New("asset type already registered")
	ErrNotLoaded     = errors.New("asset not loaded")
	ErrClosed        = errors.New("asset registry already closed")
)

// LoadParams are handed to every callback of an asset type.
type LoadParams struct {
	Path    string
	Options interface{}
}

// Callbacks implement an asset type. Prepare, Load and Finalize run in that
// order for every (re)load. Finalize, Reload and Release run on the thread
// calling Load, Update or Unload, which should be the main thread.
type Callbacks struct {
	// Prepare returns the empty object data is decoded into.
	Prepare func(params LoadParams) (interface{}, error)
	// Load decodes the file contents into obj.
	Load func(obj interface{}, data []byte, params LoadParams) error
	// Finalize creates the GPU side of obj.
	Finalize func(obj interface{}, params LoadParams) error
	// Reload is called after asset.Obj was replaced by a freshly loaded
	// object. prev is released right after.
	Reload func(asset *Asset, prev interface{})
	Release func(obj interface{})
}

type assetType struct {
	name       string
	extensions []string
	callbacks  Callbacks
}

type Asset struct {
	ID         uuid.UUID
	Type       string
	Path       string
	Obj        interface{}
	Params     LoadParams
	LastLoaded time.Time
}

type Registry struct {
	mutex  sync.RWMutex
	types  map[string]*assetType
	byExt  map[string]*assetType
	assets map[string]*Asset

	pendingMu sync.Mutex
	pending   map[string]struct{}

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*assetType),
		byExt:   make(map[string]*assetType),
		assets:  make(map[string]*Asset),
		pending: make(map[string]struct{}),
	}
}

// RegisterType adds an asset type handling files with the given extensions.
func (r *Registry) RegisterType(name string, extensions []string, cb Callbacks) error {
	if cb.Prepare == nil || cb.Load == nil {
		return fmt.Errorf("asset type '%s' needs Prepare and Load callbacks", name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	at := &assetType{name: name, extensions: extensions, callbacks: cb}
	r.types[name] = at
	for _, ext := range extensions {
		r.byExt[strings.ToLower(ext)] = at
	}
	core.LogDebug("asset type '%s' registered for %v", name, extensions)
	return nil
}

func (r *Registry) lookupType(name string) (*assetType, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	at, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return at, nil
}

// TypeForPath returns the name of the type registered for the extension of path.
func (r *Registry) TypeForPath(path string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	at, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", false
	}
	return at.name, true
}

func (at *assetType) load(params LoadParams) (interface{}, error) {
	data, err := os.ReadFile(params.Path)
	if err != nil {
		return nil, err
	}
	obj, err := at.callbacks.Prepare(params)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	if err := at.callbacks.Load(obj, data, params); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if at.callbacks.Finalize != nil {
		if err := at.callbacks.Finalize(obj, params); err != nil {
			return nil, fmt.Errorf("finalize: %w", err)
		}
	}
	return obj, nil
}

// Load returns the asset at path, loading it with the callbacks of typeName
// the first time it is requested.
func (r *Registry) Load(typeName, path string, options interface{}) (*Asset, error) {
	at, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)

	r.mutex.RLock()
	asset, exists := r.assets[path]
	r.mutex.RUnlock()
	if exists {
		return asset, nil
	}

	params := LoadParams{Path: path, Options: options}
	obj, err := at.load(params)
	if err != nil {
		return nil, fmt.Errorf("loading %s '%s': %w", typeName, path, err)
	}

	asset = &Asset{
		ID:         uuid.New(),
		Type:       typeName,
		Path:       path,
		Obj:        obj,
		Params:     params,
		LastLoaded: time.Now(),
	}
	r.mutex.Lock()
	r.assets[path] = asset
	r.mutex.Unlock()

	core.LogDebug("asset %s '%s' loaded (%s)", typeName, path, asset.ID)
	return asset, nil
}

func (r *Registry) Get(path string) (*Asset, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	a, ok := r.assets[filepath.Clean(path)]
	return a, ok
}

// Unload releases the asset and forgets it.
func (r *Registry) Unload(asset *Asset) error {
	r.mutex.Lock()
	cur, ok := r.assets[asset.Path]
	if !ok || cur != asset {
		r.mutex.Unlock()
		return fmt.Errorf("%w: %s", ErrNotLoaded, asset.Path)
	}
	delete(r.assets, asset.Path)
	at := r.types[asset.Type]
	r.mutex.Unlock()

	if at.callbacks.Release != nil {
		at.callbacks.Release(asset.Obj)
	}
	return nil
}

// Reload loads path again and swaps the new object into its asset.
func (r *Registry) Reload(path string) error {
	path = filepath.Clean(path)
	r.mutex.RLock()
	asset, ok := r.assets[path]
	var at *assetType
	if ok {
		at = r.types[asset.Type]
	}
	r.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, path)
	}

	obj, err := at.load(asset.Params)
	if err != nil {
		return fmt.Errorf("reloading %s '%s': %w", asset.Type, path, err)
	}

	r.mutex.Lock()
	prev := asset.Obj
	asset.Obj = obj
	asset.LastLoaded = time.Now()
	r.mutex.Unlock()

	if at.callbacks.Reload != nil {
		at.callbacks.Reload(asset, prev)
	}
	if at.callbacks.Release != nil {
		at.callbacks.Release(prev)
	}
	core.LogInfo("asset %s '%s' reloaded", asset.Type, path)
	return nil
}

// Update reloads every asset whose file changed since the previous call.
// It returns the number of assets reloaded.
func (r *Registry) Update() int {
	r.pendingMu.Lock()
	paths := make([]string, 0, len(r.pending))
	for p := range r.pending {
		paths = append(paths, p)
	}
	clear(r.pending)
	r.pendingMu.Unlock()

	reloaded := 0
	for _, p := range paths {
		if err := r.Reload(p); err != nil {
			core.LogError(err.Error())
			continue
		}
		reloaded++
	}
	return reloaded
}

// PendingReloads returns how many changed files wait for Update.
func (r *Registry) PendingReloads() int {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return len(r.pending)
}

// Watch starts watching dir and its sub-directories for changes to loaded assets.
func (r *Registry) Watch(dir string) error {
	r.mutex.Lock()
	if r.isClosed {
		r.mutex.Unlock()
		return ErrClosed
	}
	if r.fsnotify == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			r.mutex.Unlock()
			return err
		}
		r.fsnotify = w
		r.done = make(chan struct{})
		r.wg.Add(1)
		go r.start()
	}
	r.mutex.Unlock()
	return r.watchRecursive(dir)
}

func (r *Registry) start() {
	defer r.wg.Done()
	for {
		select {
		case e, ok := <-r.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := r.watchRecursive(e.Name); err != nil {
						core.LogWarn("asset watcher: %s", err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				r.handleFileEvent(e.Name)
			}

		case err, ok := <-r.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-r.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (r *Registry) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return r.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// handleFileEvent queues a reload when a loaded asset changed.
func (r *Registry) handleFileEvent(path string) {
	path = filepath.Clean(path)
	r.mutex.RLock()
	_, loaded := r.assets[path]
	r.mutex.RUnlock()
	if !loaded {
		return
	}
	r.pendingMu.Lock()
	r.pending[path] = struct{}{}
	r.pendingMu.Unlock()
}

// Close stops the watcher and releases every loaded asset.
func (r *Registry) Close() error {
	r.mutex.Lock()
	if r.isClosed {
		r.mutex.Unlock()
		return nil
	}
	r.isClosed = true
	w := r.fsnotify
	assets := make([]*Asset, 0, len(r.assets))
	for _, a := range r.assets {
		assets = append(assets, a)
	}
	r.mutex.Unlock()

	var err error
	if w != nil {
		close(r.done)
		r.wg.Wait()
		err = w.Close()
	}
	for _, a := range assets {
		if uerr := r.Unload(a); uerr != nil {
			core.LogWarn(uerr.Error())
		}
	}
	return err
}
