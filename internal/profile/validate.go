package profile

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var (
	rootPattern = regexp.MustCompile(`^[A-Z0-9]{1,4}$`)

	// scheduler 패키지와 같은 형식 (초 포함)
	cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(p *Profile) error {
	// === Meta ===
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Source ===
	if p.Source.URL != "" {
		u, err := url.Parse(p.Source.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ValidationError{"source.url", "must be an absolute http(s) URL"}
		}
	}
	if p.Source.Timeout != "" {
		d, err := time.ParseDuration(p.Source.Timeout)
		if err != nil {
			return ValidationError{"source.timeout", err.Error()}
		}
		if d <= 0 {
			return ValidationError{"source.timeout", "must be > 0"}
		}
	}

	// === Contracts ===
	if p.Contracts.FuturesRoot != "" && !rootPattern.MatchString(p.Contracts.FuturesRoot) {
		return ValidationError{"contracts.futures_root", "must be 1-4 upper-case letters or digits"}
	}

	// === Schedule ===
	if p.Schedule.Collect != "" {
		if _, err := cronParser.Parse(p.Schedule.Collect); err != nil {
			return ValidationError{"schedule.collect", err.Error()}
		}
	}
	if p.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(p.Schedule.Timezone); err != nil {
			return ValidationError{"schedule.timezone", err.Error()}
		}
	}

	// === Retention ===
	if p.Retention.RawRowDays != nil && *p.Retention.RawRowDays < 0 {
		return ValidationError{"retention.raw_row_days", "must be >= 0"}
	}
	if p.Retention.Schedule != "" {
		if _, err := cronParser.Parse(p.Retention.Schedule); err != nil {
			return ValidationError{"retention.schedule", err.Error()}
		}
	}

	return nil
}

// Check returns recommendations that do not stop the program
func Check(p *Profile) []Warning {
	var warnings []Warning

	if p.Meta.Version == "" {
		warnings = append(warnings, Warning{"NO_VERSION", "meta.version is empty; profile hash is the only identifier"})
	}
	if p.Schedule.Collect != "" && p.Schedule.Timezone == "" {
		warnings = append(warnings, Warning{"IMPLICIT_TZ", "schedule.collect set without schedule.timezone; SCHEDULER_TIMEZONE applies"})
	}
	if p.Retention.Schedule != "" && (p.Retention.RawRowDays == nil || *p.Retention.RawRowDays == 0) {
		warnings = append(warnings, Warning{"RETENTION_OFF", "retention.schedule has no effect while raw_row_days is 0"})
	}

	return warnings
}

func parseDuration(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
