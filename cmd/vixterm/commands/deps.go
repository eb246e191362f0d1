package commands

import (
	"context"
	"fmt"

	"github.com/wonny/vixterm/internal/collector"
	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/external/cboe"
	"github.com/wonny/vixterm/internal/profile"
	"github.com/wonny/vixterm/internal/resolver"
	"github.com/wonny/vixterm/internal/storage"
	"github.com/wonny/vixterm/pkg/config"
	"github.com/wonny/vixterm/pkg/database"
	"github.com/wonny/vixterm/pkg/httputil"
	"github.com/wonny/vixterm/pkg/logger"
	"github.com/wonny/vixterm/pkg/redis"
)

const redisPrefix = "vixterm"

// deps holds everything a command needs to run a collection
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	rdb   *redis.Client
	cache *redis.Cache

	quotes  *storage.QuoteRepository
	metrics *storage.MetricsRepository
	runner  *collector.Runner
}

// depsOptions selects the optional parts of the wiring
type depsOptions struct {
	htmlPath string // 로컬 HTML 파일에서 읽기 (네트워크 안 씀)
	dryRun   bool   // DB 연결 없이 계산만
}

// persistsLatest reports whether a run under these options stores a current record
func (o depsOptions) persistsLatest() bool {
	return !o.dryRun && o.htmlPath == ""
}

// loadedProfile identifies the profile applied by loadConfig
type loadedProfile struct {
	id       string
	hash     string
	warnings []profile.Warning
}

// loadConfig loads config and applies the --profile file and global flags
func loadConfig() (*config.Config, *loadedProfile, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var lp *loadedProfile
	if profilePath != "" {
		p, _, err := profile.Load(profilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("load profile %s: %w", profilePath, err)
		}
		hash, err := profile.Hash(p)
		if err != nil {
			return nil, nil, fmt.Errorf("hash profile: %w", err)
		}
		profile.Apply(p, cfg)
		lp = &loadedProfile{id: p.Meta.ProfileID, hash: hash, warnings: profile.Check(p)}
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, lp, nil
}

// buildDeps wires config, storage, cache, exchange client and runner
// ⭐ SSOT: 명령어 공통 의존성 조립은 여기서만
func buildDeps(ctx context.Context, opts depsOptions) (*deps, error) {
	cfg, lp, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	if lp != nil {
		log.WithFields(map[string]interface{}{
			"profile_id":   lp.id,
			"profile_hash": lp.hash,
		}).Info("Collection profile applied")
		for _, w := range lp.warnings {
			log.WithField("code", w.Code).Warn(w.Message)
		}
	}

	d := &deps{cfg: cfg, log: log}

	rdb, err := redis.New(cfg)
	if err != nil {
		// Redis는 선택 사항: 없으면 캐시/분산 제한 없이 진행
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = nil
	}
	d.rdb = rdb
	d.cache = redis.NewCache(rdb, redisPrefix)

	var source contracts.QuoteSource
	if opts.htmlPath != "" {
		source = cboe.FileSource{Path: opts.htmlPath}
	} else {
		httpClient := httputil.New(cfg, log)
		if cfg.CBOE.RatePerMinute > 0 {
			httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, redisPrefix), redis.CBOERateLimit(cfg.CBOE.RatePerMinute))
		}
		source = cboe.NewClient(httpClient, cfg.CBOE, log)
	}

	// 인터페이스 변수는 nil 그대로 두어야 Runner가 dry run으로 인식
	var quotes contracts.QuoteRepository
	var metricsRepo contracts.MetricsRepository
	if !opts.dryRun {
		db, err := database.New(ctx, cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.quotes = storage.NewQuoteRepository(db.Pool)
		d.metrics = storage.NewMetricsRepository(db.Pool)
		quotes, metricsRepo = d.quotes, d.metrics
	}

	res := resolver.New(
		resolver.WithRoot(cfg.Contracts.FuturesRoot),
		resolver.WithSpotSymbol(cfg.Contracts.SpotSymbol),
	)
	d.runner = collector.NewRunner(source, quotes, metricsRepo, res, log).WithLocation(cfg.Location())

	return d, nil
}

// Close releases the database pool and Redis connection
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
}
