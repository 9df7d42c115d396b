// Package config holds the persisted project state: the linked remote
// repository, the access token, the issues directory, and the sync
// bookkeeping (pending remote closures, last sync time). Commands load
// it explicitly at startup and save it explicitly after mutations;
// nothing in the core reads ambient global state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

const (
	FileName = ".haku.toml"

	DefaultIssuesDir = "issues"
	DefaultLogLevel  = "warn"

	configDirEnvKey = "HAKU_CONFIG_DIR"
	tokenEnvKey     = "HAKU_TOKEN"
	remoteEnvKey    = "HAKU_REMOTE"
	issuesDirEnvKey = "HAKU_ISSUES_DIR"
	logLevelEnvKey  = "HAKU_LOG_LEVEL"
)

// Configuration problems detected before any I/O. Commands report
// these and abort; there is nothing to retry.
var (
	ErrNotLinked = errors.New("no remote repository linked (run: haku link <owner/repo>)")
	ErrNoToken   = errors.New("no access token configured (run: haku token <token>)")
)

// Config defines runtime configuration for haku.
type Config struct {
	Remote          string `toml:"remote"`
	Token           string `toml:"token"`
	IssuesDir       string `toml:"issues_dir"`
	APIURL          string `toml:"api_url"`
	LogLevel        string `toml:"log_level"`
	LastSync        string `toml:"last_sync"`
	PendingClosures []int  `toml:"pending_closures"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		IssuesDir: DefaultIssuesDir,
		LogLevel:  DefaultLogLevel,
	}
}

// Path returns the config file location: HAKU_CONFIG_DIR when set,
// otherwise the current working directory.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, FileName), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, FileName), nil
}

// Load reads the config file at path and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case err != nil && !os.IsNotExist(err):
		return nil, err
	}

	if token := strings.TrimSpace(os.Getenv(tokenEnvKey)); token != "" {
		cfg.Token = token
	}
	if remote := strings.TrimSpace(os.Getenv(remoteEnvKey)); remote != "" {
		cfg.Remote = remote
	}
	if dir := strings.TrimSpace(os.Getenv(issuesDirEnvKey)); dir != "" {
		cfg.IssuesDir = dir
	}
	if level := strings.TrimSpace(os.Getenv(logLevelEnvKey)); level != "" {
		cfg.LogLevel = level
	}

	if cfg.IssuesDir == "" {
		cfg.IssuesDir = DefaultIssuesDir
	}

	return &cfg, nil
}

// Save writes the config back to path atomically.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

// Linked reports whether a remote repository is configured.
func (c *Config) Linked() bool {
	return strings.TrimSpace(c.Remote) != ""
}

// RequireRemote verifies that remote and token are configured before a
// command touches the network.
func (c *Config) RequireRemote() error {
	if !c.Linked() {
		return ErrNotLinked
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrNoToken
	}
	return nil
}

// LastSyncTime parses the stored last-sync timestamp. ok is false when
// no sync has happened yet or the stored value is unreadable.
func (c *Config) LastSyncTime() (time.Time, bool) {
	raw := strings.TrimSpace(c.LastSync)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetLastSync records the moment a sync completed.
func (c *Config) SetLastSync(t time.Time) {
	c.LastSync = t.UTC().Format(time.RFC3339)
}

// QueuePendingClosure marks an issue number for remote closure on the
// next push. Returns false when the number is already queued.
func (c *Config) QueuePendingClosure(number int) bool {
	for _, n := range c.PendingClosures {
		if n == number {
			return false
		}
	}
	c.PendingClosures = append(c.PendingClosures, number)
	return true
}

// RemovePendingClosure drops a number from the closure queue. Returns
// false when the number was not queued.
func (c *Config) RemovePendingClosure(number int) bool {
	for i, n := range c.PendingClosures {
		if n == number {
			c.PendingClosures = append(c.PendingClosures[:i], c.PendingClosures[i+1:]...)
			return true
		}
	}
	return false
}

var remotePattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// NormalizeRemote reduces the accepted repository spellings
// (owner/repo, https URL, ssh remote) to the canonical "owner/repo".
func NormalizeRemote(raw string) (string, error) {
	remote := strings.TrimSpace(raw)
	remote = strings.TrimSuffix(remote, ".git")
	remote = strings.TrimSuffix(remote, "/")

	for _, prefix := range []string{"https://", "http://", "ssh://"} {
		if rest, found := strings.CutPrefix(remote, prefix); found {
			if _, path, ok := strings.Cut(rest, "/"); ok {
				remote = path
			}
			break
		}
	}
	if strings.HasPrefix(remote, "git@") {
		if _, path, found := strings.Cut(remote, ":"); found {
			remote = path
		}
	}

	if !remotePattern.MatchString(remote) {
		return "", fmt.Errorf("invalid repository %q: expected owner/repo or a repository URL", raw)
	}
	return remote, nil
}

var allowedKeys = []string{
	"remote",
	"token",
	"issues_dir",
	"api_url",
	"log_level",
}

// AllowedKeys returns the set of keys editable through `haku config`.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is editable through `haku config`.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "remote":
		return c.Remote, nil
	case "token":
		return c.Token, nil
	case "issues_dir":
		return c.IssuesDir, nil
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set updates a config key from its string form. Save persists it.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "remote":
		if value != "" {
			normalized, err := NormalizeRemote(value)
			if err != nil {
				return err
			}
			value = normalized
		}
		c.Remote = value
	case "token":
		c.Token = value
	case "issues_dir":
		if value == "" {
			value = DefaultIssuesDir
		}
		c.IssuesDir = value
	case "api_url":
		c.APIURL = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
