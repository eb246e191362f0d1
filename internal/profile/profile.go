package profile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/vixterm/pkg/config"
)

// Profile is a YAML collection profile layered over the env config.
// Empty fields keep the env value.
type Profile struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Source    Source    `yaml:"source" json:"source"`
	Contracts Contracts `yaml:"contracts" json:"contracts"`
	Schedule  Schedule  `yaml:"schedule" json:"schedule"`
	Retention Retention `yaml:"retention" json:"retention"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Source 선물 페이지 설정
type Source struct {
	URL       string `yaml:"url" json:"url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Timeout   string `yaml:"timeout" json:"timeout"` // Go duration, e.g. "30s"
}

// Contracts 심볼 규칙
type Contracts struct {
	FuturesRoot string `yaml:"futures_root" json:"futures_root"`
	SpotSymbol  string `yaml:"spot_symbol" json:"spot_symbol"`
}

// Schedule 수집 스케줄 (cron with seconds)
type Schedule struct {
	Collect  string `yaml:"collect" json:"collect"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Retention 원본 행 보관
type Retention struct {
	RawRowDays *int   `yaml:"raw_row_days" json:"raw_row_days"` // nil = env 값 유지
	Schedule   string `yaml:"schedule" json:"schedule"`
}

// Load reads a YAML profile and returns it with the raw bytes.
// Unknown fields are rejected so a typo never silently falls back to env.
func Load(path string) (*Profile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&p); err != nil {
		return nil, nil, err
	}

	if err := Validate(&p); err != nil {
		return nil, data, err
	}

	return &p, data, nil
}

// Hash generates SHA256 hash from Profile (canonical JSON)
func Hash(p *Profile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Apply overlays the non-empty profile fields onto cfg
// ⭐ SSOT: 프로필 → Config 반영은 여기서만
func Apply(p *Profile, cfg *config.Config) {
	if p.Source.URL != "" {
		cfg.CBOE.URL = p.Source.URL
	}
	if p.Source.UserAgent != "" {
		cfg.CBOE.UserAgent = p.Source.UserAgent
	}
	if d, ok := parseDuration(p.Source.Timeout); ok {
		cfg.CBOE.Timeout = d
	}

	if p.Contracts.FuturesRoot != "" {
		cfg.Contracts.FuturesRoot = p.Contracts.FuturesRoot
	}
	if p.Contracts.SpotSymbol != "" {
		cfg.Contracts.SpotSymbol = p.Contracts.SpotSymbol
	}

	if p.Schedule.Collect != "" {
		cfg.Scheduler.CollectSchedule = p.Schedule.Collect
	}
	if p.Schedule.Timezone != "" {
		cfg.Scheduler.Timezone = p.Schedule.Timezone
	}

	if p.Retention.RawRowDays != nil {
		cfg.Scheduler.RetentionDays = *p.Retention.RawRowDays
	}
	if p.Retention.Schedule != "" {
		cfg.Scheduler.RetentionSchedule = p.Retention.Schedule
	}
}
