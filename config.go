package shortlist

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/shortlist/appraiser"
	"github.com/hupe1980/shortlist/codec"
	"github.com/hupe1980/shortlist/generator"
	"github.com/hupe1980/shortlist/retention"
	"github.com/hupe1980/shortlist/score"
	"github.com/hupe1980/shortlist/trace"
)

// Config is the file form of a search setup.
//
//	capacity: 20
//	search:
//	  max_offers: 100000
//	  no_progress_limit: 2000
//	  rank_limit: 40
//	resources:
//	  memory_limit_bytes: 67108864
//	  item_bytes: 512
//	  workers: 4
//	appraisers:
//	  - name: nonstop
//	    priority: 30
//	    when: candidate.stops == 0
//	    verdict: must-have
//	    minor: -candidate.minutes
type Config struct {
	Capacity     int               `yaml:"capacity"`
	RejectMemory int               `yaml:"reject_memory"`
	Search       SearchConfig      `yaml:"search"`
	Resources    ResourceConfig    `yaml:"resources"`
	Trace        TraceConfig       `yaml:"trace"`
	Logging      LoggingConfig     `yaml:"logging"`
	Appraisers   []AppraiserConfig `yaml:"appraisers"`
}

// SearchConfig bounds a single Search.
type SearchConfig struct {
	MaxOffers       int `yaml:"max_offers"`
	NoProgressLimit int `yaml:"no_progress_limit"`
	RankLimit       int `yaml:"rank_limit"`
}

// ResourceConfig sizes the Budget shared by searches.
type ResourceConfig struct {
	MemoryLimitBytes int64   `yaml:"memory_limit_bytes"`
	ItemBytes        int64   `yaml:"item_bytes"`
	Workers          int64   `yaml:"workers"`
	OffersPerSec     float64 `yaml:"offers_per_sec"`
	OfferBurst       int     `yaml:"offer_burst"`
}

// TraceConfig selects how trace reports are encoded.
type TraceConfig struct {
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
}

// LoggingConfig configures the Logger returned by Config.Logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppraiserConfig declares a CEL expression appraiser, see
// appraiser.ExpressionConfig.
type AppraiserConfig struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	When     string `yaml:"when"`
	Verdict  string `yaml:"verdict"`
	Minor    string `yaml:"minor"`
	Else     string `yaml:"else"`
}

// DefaultConfig returns the configuration used for fields a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Capacity: 10,
		Resources: ResourceConfig{
			Workers: 1,
		},
		Trace: TraceConfig{
			Codec:       "go-json",
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig, applies SHORTLIST_*
// environment overrides and validates the result. An empty path skips the
// file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes YAML data on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHORTLIST_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capacity = n
		}
	}
	if v := os.Getenv("SHORTLIST_MAX_OFFERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxOffers = n
		}
	}
	if v := os.Getenv("SHORTLIST_WORKERS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Resources.Workers = n
		}
	}
	if v := os.Getenv("SHORTLIST_MEMORY_LIMIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Resources.MemoryLimitBytes = n
		}
	}
	if v := os.Getenv("SHORTLIST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SHORTLIST_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate reports every problem of c, joined, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if c.Capacity < 1 {
		fail("capacity must be positive, got %d", c.Capacity)
	}
	if c.Search.MaxOffers < 0 || c.Search.NoProgressLimit < 0 || c.Search.RankLimit < 0 {
		fail("search limits must not be negative")
	}
	if c.Resources.MemoryLimitBytes < 0 || c.Resources.ItemBytes < 0 || c.Resources.Workers < 0 || c.Resources.OffersPerSec < 0 {
		fail("resource limits must not be negative")
	}
	if _, err := codec.ByName(c.Trace.Codec); err != nil {
		fail("trace codec: %v", err)
	}
	if _, err := trace.ParseCompression(c.Trace.Compression); err != nil {
		fail("trace compression: %v", err)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		fail("logging level: %v", err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		fail("unknown logging format %q", c.Logging.Format)
	}

	seen := make(map[string]bool, len(c.Appraisers))
	for i, a := range c.Appraisers {
		if a.Name == "" {
			fail("appraisers[%d]: name is required", i)
		} else if seen[a.Name] {
			fail("appraisers[%d]: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = true
		if a.When == "" {
			fail("appraisers[%d]: when is required", i)
		}
		if _, err := score.ParseCategory(a.Verdict); err != nil {
			fail("appraisers[%d]: %v", i, err)
		}
		if _, err := score.ParseCategory(a.Else); err != nil {
			fail("appraisers[%d]: else: %v", i, err)
		}
	}

	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(strings.ToUpper(s)))
	return l, err
}

// Logger builds the configured logger.
func (c *Config) Logger() *Logger {
	level, _ := parseLevel(c.Logging.Level)
	if c.Logging.Format == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// Budget builds a Budget from the resource section.
func (c *Config) Budget() *Budget {
	return NewBudget(BudgetConfig{
		MemoryLimitBytes: c.Resources.MemoryLimitBytes,
		MaxWorkers:       c.Resources.Workers,
		OffersPerSec:     c.Resources.OffersPerSec,
		OfferBurst:       c.Resources.OfferBurst,
	})
}

// SearchOptions returns the Search options of the search section. budget,
// usually from c.Budget, paces offers at resources.offers_per_sec; nil
// leaves Search unpaced. Options given by the caller come after them and
// therefore win.
func (c *Config) SearchOptions(budget *Budget, extra ...Option) []Option {
	opts := []Option{
		WithMaxOffers(c.Search.MaxOffers),
		WithNoProgressLimit(c.Search.NoProgressLimit),
	}
	if budget != nil {
		opts = append(opts, WithBudget(budget))
	}
	return append(opts, extra...)
}

// Generator returns a generator over width dimensions honoring rank_limit.
func (c *Config) Generator(width int, lengths ...int) *generator.Generator {
	opts := []generator.Option{generator.WithLengths(lengths...)}
	if c.Search.RankLimit > 0 {
		opts = append(opts, generator.WithRankLimit(c.Search.RankLimit))
	}
	return generator.New(width, opts...)
}

// TraceOptions returns the trace encoding options.
func (c *Config) TraceOptions() []trace.Option {
	cd, _ := codec.ByName(c.Trace.Codec)
	comp, _ := trace.ParseCompression(c.Trace.Compression)
	return []trace.Option{trace.WithCodec(cd), trace.WithCompression(comp)}
}

// AttributedCandidate is a candidate that exposes attributes to expression
// appraisers.
type AttributedCandidate[K comparable] interface {
	retention.Candidate[K]
	appraiser.Attributed
}

// NewSet creates a retention set with the configured capacity and expression
// appraisers. Memory is charged to budget when both budget and item_bytes are
// set. More appraisers can be added before the first offer.
func NewSet[K comparable, C AttributedCandidate[K]](c *Config, budget *Budget, optFns ...retention.Option) (*retention.Set[K, C], error) {
	opts := []retention.Option{}
	if c.RejectMemory != 0 {
		opts = append(opts, retention.WithRejectMemory(c.RejectMemory))
	}
	if budget != nil && c.Resources.ItemBytes > 0 {
		opts = append(opts, retention.WithMemoryAccountant(budget, c.Resources.ItemBytes))
	}
	opts = append(opts, optFns...)

	set, err := retention.New[K, C](c.Capacity, opts...)
	if err != nil {
		return nil, err
	}

	for _, ac := range c.Appraisers {
		a, err := NewExpressionAppraiser[C](ac)
		if err != nil {
			return nil, err
		}
		set.AddAppraiser(a, ac.Priority)
	}
	return set, nil
}

// NewExpressionAppraiser compiles one appraiser declaration.
func NewExpressionAppraiser[C appraiser.Attributed](ac AppraiserConfig) (*appraiser.Expression[C], error) {
	then, err := score.ParseCategory(ac.Verdict)
	if err != nil {
		return nil, fmt.Errorf("%w: appraiser %s: %w", ErrInvalidConfig, ac.Name, err)
	}
	otherwise, err := score.ParseCategory(ac.Else)
	if err != nil {
		return nil, fmt.Errorf("%w: appraiser %s: else: %w", ErrInvalidConfig, ac.Name, err)
	}

	return appraiser.NewExpression[C](ac.Name, appraiser.ExpressionConfig{
		When:  ac.When,
		Then:  then,
		Minor: ac.Minor,
		Else:  score.Verdict{Category: otherwise},
	})
}
