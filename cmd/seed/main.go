package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"clinic-assistant/internal/cache"
	"clinic-assistant/internal/models"
	"clinic-assistant/internal/repository"
	"clinic-assistant/pkg/config"
	"clinic-assistant/pkg/logger"
	"clinic-assistant/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	scopeRepo := repository.NewScopeRepository(db, appLogger)
	restrictionRepo := repository.NewRestrictionRepository(db, appLogger)

	appLogger.Info("Starting rule seeding...")

	seedDir := filepath.Join("cmd", "seed")
	cacheFile := filepath.Join(seedDir, ".seed_cache.json")
	state, err := loadCache(cacheFile)
	if err != nil {
		appLogger.Warn("Failed to load cache, will process all files", zap.Error(err))
		state = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}

	changed := 0
	for _, f := range []struct {
		name string
		seed func(ctx context.Context, path string) (int, error)
	}{
		{"scopes.json", func(ctx context.Context, path string) (int, error) {
			return seedScopes(ctx, path, scopeRepo, appLogger)
		}},
		{"restrictions.json", func(ctx context.Context, path string) (int, error) {
			return seedRestrictions(ctx, path, restrictionRepo, appLogger)
		}},
	} {
		path := filepath.Join(seedDir, f.name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			appLogger.Warn("Seed file not found, skipping", zap.String("path", path))
			continue
		}

		fileHash, err := calculateFileHash(path)
		if err != nil {
			appLogger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		}
		if cached, ok := state.ProcessedFiles[path]; ok && fileHash != "" && cached.FileHash == fileHash {
			appLogger.Info("Seed file unchanged, skipping",
				zap.String("path", path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			continue
		}

		n, err := f.seed(ctx, path)
		if err != nil {
			appLogger.Fatal("Failed to seed rules", zap.String("path", path), zap.Error(err))
		}
		appLogger.Info("Seeded rules", zap.String("path", path), zap.Int("count", n))
		changed++

		state.ProcessedFiles[path] = ProcessedFile{
			FilePath:    path,
			FileHash:    fileHash,
			ProcessedAt: time.Now(),
		}
	}

	if err := saveCache(cacheFile, state); err != nil {
		appLogger.Warn("Failed to save cache", zap.Error(err))
	}

	// Cached rule sets would otherwise linger until their TTL
	if changed > 0 && cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			appLogger.Warn("Skipping rule cache invalidation", zap.Error(err))
		} else {
			defer client.Close()
			if err := cache.NewRuleCache(client, cfg.Chat.RulesCacheTTL, appLogger).Invalidate(ctx); err != nil {
				appLogger.Warn("Failed to invalidate rule cache", zap.Error(err))
			}
		}
	}

	appLogger.Info("Rule seeding completed", zap.Int("files_changed", changed))
}

// scopeSeed mirrors one entry of scopes.json. Keywords use the same
// comma-separated form as the database column.
type scopeSeed struct {
	Category            string `json:"category"`
	Topic               string `json:"topic"`
	Keywords            string `json:"keywords"`
	AllowedResponseType string `json:"allowed_response_type"`
	ResponseTemplate    string `json:"response_template"`
	MaxDetailLevel      int    `json:"max_detail_level"`
	RequiresLogin       bool   `json:"requires_login"`
	Priority            int    `json:"priority"`
	IsActive            *bool  `json:"is_active"`
}

type restrictionSeed struct {
	TopicName         string `json:"topic_name"`
	Keywords          string `json:"keywords"`
	RestrictionReason string `json:"restriction_reason"`
	RedirectMessage   string `json:"redirect_message"`
	Severity          int    `json:"severity"`
	LogAttempt        *bool  `json:"log_attempt"`
	IsActive          *bool  `json:"is_active"`
}

func seedScopes(ctx context.Context, path string, repo *repository.ScopeRepository, logger *zap.Logger) (int, error) {
	var seeds []scopeSeed
	if err := readJSON(path, &seeds); err != nil {
		return 0, err
	}

	stored := 0
	for _, s := range seeds {
		// ids are assigned by the database; 1 only satisfies Validate
		rule := &models.ScopeRule{
			ID:                  1,
			Category:            s.Category,
			Topic:               s.Topic,
			Keywords:            models.ParseKeywords(s.Keywords),
			AllowedResponseType: models.ResponseType(s.AllowedResponseType),
			ResponseTemplate:    s.ResponseTemplate,
			MaxDetailLevel:      s.MaxDetailLevel,
			RequiresLogin:       s.RequiresLogin,
			Priority:            s.Priority,
			IsActive:            boolOr(s.IsActive, true),
		}
		if err := rule.Validate(); err != nil {
			logger.Warn("Skipping invalid scope seed", zap.String("topic", s.Topic), zap.Error(err))
			continue
		}

		id, err := repo.Upsert(ctx, rule)
		if err != nil {
			return stored, fmt.Errorf("failed to upsert scope %q: %w", s.Topic, err)
		}
		logger.Debug("Upserted scope rule", zap.Int64("id", id), zap.String("topic", s.Topic))
		stored++
	}
	return stored, nil
}

func seedRestrictions(ctx context.Context, path string, repo *repository.RestrictionRepository, logger *zap.Logger) (int, error) {
	var seeds []restrictionSeed
	if err := readJSON(path, &seeds); err != nil {
		return 0, err
	}

	stored := 0
	for _, s := range seeds {
		rule := &models.RestrictionRule{
			ID:                1, // see seedScopes
			TopicName:         s.TopicName,
			Keywords:          models.ParseKeywords(s.Keywords),
			RestrictionReason: s.RestrictionReason,
			RedirectMessage:   s.RedirectMessage,
			Severity:          s.Severity,
			LogAttempt:        boolOr(s.LogAttempt, true),
			IsActive:          boolOr(s.IsActive, true),
		}
		if err := rule.Validate(); err != nil {
			logger.Warn("Skipping invalid restriction seed", zap.String("topic", s.TopicName), zap.Error(err))
			continue
		}

		id, err := repo.Upsert(ctx, rule)
		if err != nil {
			return stored, fmt.Errorf("failed to upsert restriction %q: %w", s.TopicName, err)
		}
		logger.Debug("Upserted restriction rule", zap.Int64("id", id), zap.String("topic", s.TopicName))
		stored++
	}
	return stored, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ProcessedFile records a seed file that was already applied
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

func loadCache(cacheFile string) (*CacheData, error) {
	state := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if state.ProcessedFiles == nil {
		state.ProcessedFiles = make(map[string]ProcessedFile)
	}
	return state, nil
}

func saveCache(cacheFile string, state *CacheData) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
