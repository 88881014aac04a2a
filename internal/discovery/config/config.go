// Package config loads and validates the domain_search.config.yaml file
// described in SPEC_FULL.md §6. It layers defaults, a YAML file, and
// struct-tag validation using koanf and go-playground/validator, following
// the same load -> default -> validate shape as the teacher corpus's own
// config loaders (see haukened-rr-dns/internal/dns/infra/config).
package config

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"domainsearch/internal/discovery/log"
)

// Config is the root of domain_search.config.yaml.
type Config struct {
	Version   int             `koanf:"version"`
	Generator GeneratorConfig `koanf:"generator"`
	Limits    LimitsConfig    `koanf:"limits" validate:"required"`
	HTTPCheck HTTPCheckConfig `koanf:"http_check" validate:"required"`
	Run       RunConfig       `koanf:"run"`
	Storage   StorageConfig   `koanf:"storage" validate:"required"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// GeneratorConfig controls candidate enumeration (spec.md §4.4).
type GeneratorConfig struct {
	TLDs                 []string `koanf:"tlds"`
	TLDsFile             string   `koanf:"tlds_file"`
	MinLength            int      `koanf:"min_length" validate:"gte=1"`
	MaxLength            int      `koanf:"max_length"`
	Alphabet             string   `koanf:"alphabet"`
	AllowHyphen          bool     `koanf:"allow_hyphen"`
	ForbidLeadingHyphen  bool     `koanf:"forbid_leading_hyphen"`
	ForbidTrailingHyphen bool     `koanf:"forbid_trailing_hyphen"`
	ForbidDoubleHyphen   bool     `koanf:"forbid_double_hyphen"`
}

// LimitsConfig controls pipeline admission (spec.md §4.6).
type LimitsConfig struct {
	Concurrency    int `koanf:"concurrency" validate:"gt=0"`
	RatePerSecond  int `koanf:"rate_per_second" validate:"gt=0"`
	MaxCandidates  int `koanf:"max_candidates"`
}

// HTTPCheckConfig controls the prober (spec.md §4.5).
type HTTPCheckConfig struct {
	Timeout          time.Duration `koanf:"-"`
	TimeoutRaw       string        `koanf:"timeout"`
	Retry            uint32        `koanf:"retry"`
	Method           string        `koanf:"method"`
	AcceptStatusMin  int           `koanf:"accept_status_min" validate:"gt=0"`
	AcceptStatusMax  int           `koanf:"accept_status_max"`
	TryHTTPSFirst    bool          `koanf:"try_https_first"`
	BodyLimitBytes   uint64        `koanf:"body_limit_bytes"`
}

// RunConfig controls the pipeline's outer loop (spec.md §4.6).
type RunConfig struct {
	Loop bool `koanf:"loop"`
}

// StorageConfig controls the store, resume, and optional sink (spec.md §4.2, §4.3, §4.10).
type StorageConfig struct {
	Dir       string     `koanf:"dir" validate:"required"`
	Resume    bool       `koanf:"resume"`
	StateFile string     `koanf:"state_file"`
	Sink      SinkConfig `koanf:"sink"`
}

// SinkConfig is the additive, optional external-publish config (SPEC_FULL.md §4.10).
type SinkConfig struct {
	RedisAddr string `koanf:"redis_addr"`
}

// LoggingConfig is the additive logging config (SPEC_FULL.md §6).
type LoggingConfig struct {
	Level string `koanf:"level"`
}

const defaultAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789-"

// Load reads, defaults, and validates path, then resolves the TLD list and
// the default state file path, mirroring original_source/src/config.rs's
// load_config.
func Load(path string) (*Config, error) {
	log.Info(map[string]any{"path": path}, "loading config")

	k := koanf.New(".")

	defaults := Config{
		Version: 1,
		Generator: GeneratorConfig{
			Alphabet: defaultAlphabet,
		},
		HTTPCheck: HTTPCheckConfig{
			TimeoutRaw:      "3s",
			Method:          "GET",
			AcceptStatusMin: 200,
			AcceptStatusMax: 299,
			BodyLimitBytes:  4096,
		},
		Logging: LoggingConfig{Level: "info"},
	}
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// http_check.timeout arrives as a raw YAML string ("500ms", "3s", "2m",
	// "1h"); koanf has no built-in duration unmarshaler, so it's read and
	// parsed by hand before the rest of the struct is unmarshalled.
	timeoutRaw := k.String("http_check.timeout")
	if timeoutRaw == "" {
		timeoutRaw = defaults.HTTPCheck.TimeoutRaw
	}
	timeout, err := time.ParseDuration(timeoutRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid http_check.timeout %q: %w", timeoutRaw, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.HTTPCheck.Timeout = timeout

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := crossFieldValidate(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Generator.TLDsFile) != "" {
		src := strings.TrimSpace(cfg.Generator.TLDsFile)
		log.Info(map[string]any{"source": src}, "loading TLDs")
		var tlds []string
		var err error
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			tlds, err = loadTLDsFromURL(src)
		} else {
			tlds, err = loadTLDsFromFile(src)
		}
		if err != nil {
			return nil, fmt.Errorf("load TLDs from %s: %w", src, err)
		}
		if len(tlds) == 0 {
			return nil, fmt.Errorf("no TLDs parsed from %s", src)
		}
		log.Info(map[string]any{"count": len(tlds), "source": src}, "loaded TLDs")
		cfg.Generator.TLDs = tlds
	}

	if strings.TrimSpace(cfg.Storage.StateFile) == "" {
		cfg.Storage.StateFile = filepath.Join(cfg.Storage.Dir, "state.json")
		log.Info(map[string]any{"state_file": cfg.Storage.StateFile}, "storage.state_file not set, computed default")
	}

	if strings.TrimSpace(cfg.Generator.Alphabet) == "" {
		cfg.Generator.Alphabet = defaultAlphabet
	}

	log.Info(map[string]any{
		"dir":         cfg.Storage.Dir,
		"concurrency": cfg.Limits.Concurrency,
		"rps":         cfg.Limits.RatePerSecond,
		"min_length":  cfg.Generator.MinLength,
		"max_length":  cfg.Generator.MaxLength,
		"inline_tlds": len(cfg.Generator.TLDs),
	}, "config validated")

	return &cfg, nil
}

// crossFieldValidate performs the checks that validator struct tags cannot
// express alone, mirroring original_source/src/config.rs::validate_config.
func crossFieldValidate(cfg *Config) error {
	if len(cfg.Generator.TLDs) == 0 && strings.TrimSpace(cfg.Generator.TLDsFile) == "" {
		return fmt.Errorf("generator.tlds must not be empty (or provide generator.tlds_file)")
	}
	if cfg.Generator.MinLength < 1 || cfg.Generator.MaxLength < cfg.Generator.MinLength {
		return fmt.Errorf("invalid lengths: %d..%d", cfg.Generator.MinLength, cfg.Generator.MaxLength)
	}
	if cfg.HTTPCheck.AcceptStatusMax < cfg.HTTPCheck.AcceptStatusMin {
		return fmt.Errorf("invalid http_check accept status range: %d..%d", cfg.HTTPCheck.AcceptStatusMin, cfg.HTTPCheck.AcceptStatusMax)
	}
	if strings.TrimSpace(cfg.Storage.Dir) == "" {
		return fmt.Errorf("storage.dir must not be empty")
	}
	return nil
}

// loadTLDsFromFile reads one TLD per line, stripping comments and blank
// lines, and returns a sorted, deduped, dot-prefixed list.
func loadTLDsFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTLDLines(string(data)), nil
}

// loadTLDsFromURL fetches the same line format over HTTP(S).
func loadTLDsFromURL(url string) ([]string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseTLDLines(string(body)), nil
}

func parseTLDLines(text string) []string {
	uniq := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		t = strings.TrimPrefix(t, ".")
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		uniq["."+t] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for t := range uniq {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
