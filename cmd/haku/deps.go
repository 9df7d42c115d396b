package main

import (
	"log/slog"
	"path/filepath"

	"haku/internal/backup"
	"haku/internal/config"
	"haku/internal/github"
	"haku/internal/store"
	"haku/internal/sync"
)

const backupDirName = ".haku-backups"

func issueStore(cfg *config.Config) *store.Store {
	return store.New(cfg.IssuesDir, slog.Default().With("component", "store"))
}

func backupManager(cfg *config.Config) *backup.Manager {
	root := filepath.Join(filepath.Dir(cfg.IssuesDir), backupDirName)
	return backup.New(root, slog.Default().With("component", "backup"))
}

func remoteGateway(cfg *config.Config) github.Gateway {
	return github.NewClient(cfg.APIURL, cfg.Remote, cfg.Token)
}

func newEngine(cfg *config.Config) *sync.Engine {
	return sync.New(issueStore(cfg), remoteGateway(cfg), backupManager(cfg), cfg, slog.Default().With("component", "sync"))
}
