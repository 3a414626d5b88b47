package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/research-session/internal"
)

// app bundles the components a command works with
type app struct {
	cfg        internal.Config
	paths      internal.StoragePaths
	kv         internal.KeyValueStore
	store      *internal.SessionStore
	client     *internal.ResearchClient
	dispatcher *internal.QueryDispatcher
	bridge     *internal.PromptBridge
}

// loadConfig resolves configuration and applies the global flag overrides
func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if storagePath != "" {
		cfg.DataDir = storagePath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	internal.SetLogFormat(cfg.LogFormat)
	return cfg, nil
}

func resolvePaths(cfg internal.Config) (internal.StoragePaths, error) {
	if cfg.DataDir != "" {
		return internal.NewStoragePaths(cfg.DataDir), nil
	}
	return internal.DetectStoragePaths()
}

// openApp loads config, opens the session store and wires the backend
// client. The caller must Close the result.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	paths, err := resolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage paths: %w", err)
	}
	if cfg.Backend != internal.BackendMemory {
		if err := os.MkdirAll(paths.DataDir, 0755); err != nil {
			return nil, &internal.StorageError{Path: paths.DataDir, Op: "mkdir", Err: err}
		}
	}

	kv, err := internal.OpenKeyValueStore(cfg.Backend, paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	internal.LogDebug("Opened %s store in %s", cfg.Backend, paths.DataDir)

	store := internal.NewSessionStore(kv)
	if err := store.Load(); err != nil {
		if cerr := kv.Close(); cerr != nil {
			internal.LogWarn("Failed to close store: %v", cerr)
		}
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	client := internal.NewResearchClient(cfg.APIURL, cfg.Timeout)
	dispatcher := internal.NewQueryDispatcher(store, client, cfg.Timeout)

	return &app{
		cfg:        cfg,
		paths:      paths,
		kv:         kv,
		store:      store,
		client:     client,
		dispatcher: dispatcher,
		bridge:     internal.NewPromptBridge(store, dispatcher),
	}, nil
}

// Close releases the key-value store
func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		internal.LogWarn("Failed to close store: %v", err)
	}
}

// resolveSession maps an id or id prefix to a session, defaulting to the
// active one when ref is empty
func (a *app) resolveSession(ref string) (*internal.ChatSession, error) {
	if ref == "" {
		active := a.store.Active()
		if active == nil {
			return nil, fmt.Errorf("no sessions yet (use 'research-session new' or 'research-session ask')")
		}
		return active, nil
	}

	id, err := a.store.ResolveID(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (use 'research-session list' to see available sessions)", err, ref)
	}
	session, ok := a.store.Session(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", internal.ErrSessionNotFound, ref)
	}
	return session, nil
}
