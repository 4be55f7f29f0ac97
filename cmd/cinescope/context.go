package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"cinescope/internal/config"
	"cinescope/internal/service"
	"cinescope/internal/storage"
	"cinescope/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// session is an opened backend with a hydrated store over it.
type session struct {
	cfg     *config.Config
	bridge  *storage.Bridge
	store   *store.Store
	backups *service.BackupService
}

func (s *session) Close() error {
	return s.bridge.Close()
}

// withSession opens the configured backend for the duration of fn.
func (c *commandContext) withSession(fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	bridge := storage.NewBridge(backend)
	s := &session{
		cfg:     cfg,
		bridge:  bridge,
		store:   store.New(bridge),
		backups: service.NewBackupService(backend, afero.NewOsFs(), cfg.Backup.Dir, cfg.Backup.MaxBackups),
	}
	defer s.Close()
	return fn(s)
}
