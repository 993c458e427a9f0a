package internal

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	tt "github.com/gnolang/rmlint/internal/types"
)

const (
	cacheFileName = "lint_cache.msgpack"

	DefaultCacheMaxAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash    string
	ModTime int64
}

// CacheEntry holds the issues of one file. RuleSet identifies the rules the
// issues were computed with.
type CacheEntry struct {
	Metadata     fileMetadata
	RuleSet      string
	Issues       []tt.Issue
	CreatedAt    time.Time
	LastAccessed time.Time
}

// cacheFile is the on-disk layout.
type cacheFile struct {
	Dependencies map[string]string
	Entries      map[string]CacheEntry
}

// Cache stores lint results per file. An entry is reused only while the
// file content, the rule set, the dependency files (the config file) and
// the entry age all stay valid.
type Cache struct {
	CacheDir         string
	entries          map[string]CacheEntry
	mutex            sync.RWMutex
	maxAge           time.Duration
	dependencyFiles  []string
	dependencyHashes map[string]string
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		entries:          make(map[string]CacheEntry),
		maxAge:           DefaultCacheMaxAge,
		dependencyHashes: make(map[string]string),
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil // first run
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}

	var stored cacheFile
	if err := msgpack.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	if stored.Dependencies != nil {
		c.dependencyHashes = stored.Dependencies
	}
	return nil
}

func (c *Cache) save() error {
	data, err := msgpack.Marshal(cacheFile{
		Dependencies: c.dependencyHashes,
		Entries:      c.entries,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := os.WriteFile(c.path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// AddDependency makes every entry depend on file: when its content changes,
// all cached results are dropped.
func (c *Cache) AddDependency(file string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	hash, err := getFileHash(file)
	if err != nil {
		return fmt.Errorf("failed to get hash for %s: %w", file, err)
	}
	c.dependencyFiles = append(c.dependencyFiles, file)
	if old, ok := c.dependencyHashes[file]; ok && old != hash {
		c.entries = make(map[string]CacheEntry)
	}
	c.dependencyHashes[file] = hash
	return nil
}

// Set stores the issues found in filename by the rules identified by ruleSet.
func (c *Cache) Set(filename, ruleSet string, issues []tt.Issue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     metadata,
		RuleSet:      ruleSet,
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}

	return c.save()
}

// Get returns the cached issues of filename if they were computed with the
// same rule set and are still valid.
func (c *Cache) Get(filename, ruleSet string) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if entry.RuleSet != ruleSet || c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	current, err := getFileMetadata(filename)
	if err != nil || current != entry.Metadata {
		return true
	}

	return c.haveDependenciesChanged()
}

func (c *Cache) haveDependenciesChanged() bool {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if err != nil || hash != c.dependencyHashes[file] {
			return true
		}
	}
	return false
}

// SetMaxAge sets how long an entry stays valid. Zero disables expiry.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// Invalidate drops the entry of one file, e.g. after it has been fixed.
func (c *Cache) Invalidate(filename string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, filename)
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, nothing to recover
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:    fmt.Sprintf("%x", hash.Sum(nil)),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
