package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g.
// SCHOOLFINDER_DATA_DATASET.
const EnvPrefix = "SCHOOLFINDER"

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Filter  FilterConfig  `yaml:"filter" mapstructure:"filter"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the dataset and its side files.
type DataConfig struct {
	Dataset         string `yaml:"dataset" mapstructure:"dataset"`
	TownsFile       string `yaml:"towns_file" mapstructure:"towns_file"`
	LanguagesFile   string `yaml:"languages_file" mapstructure:"languages_file"`
	CoordinatesFile string `yaml:"coordinates_file" mapstructure:"coordinates_file"`
	CurrentYear     int    `yaml:"current_year" mapstructure:"current_year"`
	Years           []int  `yaml:"years" mapstructure:"years"`
}

// HistoryYears returns Years without the current year, in order.
func (d DataConfig) HistoryYears() []int {
	var out []int
	for _, y := range d.Years {
		if y != d.CurrentYear {
			out = append(out, y)
		}
	}
	return out
}

// GeocodeConfig configures the OneMap client.
type GeocodeConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	RateIntervalMs int    `yaml:"rate_interval_ms" mapstructure:"rate_interval_ms"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ScrapeConfig configures the sgschooling scraper.
type ScrapeConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	MainPath       string `yaml:"main_path" mapstructure:"main_path"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	Output         string `yaml:"output" mapstructure:"output"`
	RequestDelayMs int    `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// FilterConfig holds the defaults for find's flags.
type FilterConfig struct {
	Score         int     `yaml:"score" mapstructure:"score"`
	MaxCutoff     int     `yaml:"max_cutoff" mapstructure:"max_cutoff"`
	MaxDistanceKM float64 `yaml:"max_distance_km" mapstructure:"max_distance_km"`
	Sort          string  `yaml:"sort" mapstructure:"sort"`
	Gender        string  `yaml:"gender" mapstructure:"gender"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.dataset", "data/schools.csv")
	v.SetDefault("data.towns_file", "")
	v.SetDefault("data.languages_file", "data/higher_mother_tongue.json")
	v.SetDefault("data.coordinates_file", "data/school_coordinates.json")
	v.SetDefault("data.current_year", 2025)
	v.SetDefault("data.years", []int{2025, 2024, 2023})
	v.SetDefault("geocode.base_url", "https://www.onemap.gov.sg")
	v.SetDefault("geocode.rate_interval_ms", 300)
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("geocode.max_retries", 3)
	v.SetDefault("scrape.base_url", "https://sgschooling.com")
	v.SetDefault("scrape.main_path", "/secondary/cop/all")
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Educational Research Bot)")
	v.SetDefault("scrape.output", "data/schools.csv")
	v.SetDefault("scrape.request_delay_ms", 2000)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("filter.score", 4)
	v.SetDefault("filter.max_cutoff", 30)
	v.SetDefault("filter.max_distance_km", 50)
	v.SetDefault("filter.sort", "name")
	v.SetDefault("filter.gender", "all")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is the command name.
func (c *Config) Validate(mode string) error {
	var problems []string
	require := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	require(c.Data.CurrentYear > 0, "data.current_year must be > 0")
	require(containsInt(c.Data.Years, c.Data.CurrentYear), "data.years must include data.current_year")

	switch mode {
	case "find":
		require(c.Data.Dataset != "", "data.dataset is required")
		require(c.Filter.MaxCutoff >= 4 && c.Filter.MaxCutoff <= 30, "filter.max_cutoff must be between 4 and 30")
		require(c.Filter.MaxDistanceKM > 0, "filter.max_distance_km must be > 0")
		require(c.Geocode.BaseURL != "", "geocode.base_url is required")
	case "enrich":
		require(c.Data.Dataset != "", "data.dataset is required")
		require(c.Geocode.BaseURL != "", "geocode.base_url is required")
		require(c.Geocode.RateIntervalMs > 0, "geocode.rate_interval_ms must be > 0")
	case "locate":
		require(c.Geocode.BaseURL != "", "geocode.base_url is required")
	case "inject-coords":
		require(c.Data.Dataset != "", "data.dataset is required")
		require(c.Data.CoordinatesFile != "", "data.coordinates_file is required")
	case "languages":
		require(c.Data.Dataset != "", "data.dataset is required")
		require(c.Data.LanguagesFile != "", "data.languages_file is required")
	case "scrape":
		require(c.Scrape.BaseURL != "", "scrape.base_url is required")
		require(c.Scrape.Output != "", "scrape.output is required")
		require(c.Scrape.RequestDelayMs >= 0, "scrape.request_delay_ms must be >= 0")
		require(c.Scrape.MaxRetries >= 1 && c.Scrape.MaxRetries <= 10, "scrape.max_retries must be between 1 and 10")
	case "towns":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
