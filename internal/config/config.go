package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Field names and the
// env/yaml expansion strategy follow the same shape the rest of this
// codebase's ancestry uses: a YAML file with ${VAR} expansion, overridden
// by explicit environment variables, all with hard-coded defaults applied
// before either source is consulted.
type Config struct {
	Pipeline struct {
		Platform    string `yaml:"platform"`
		InputRole   string `yaml:"input_role"`
		Location    string `yaml:"location"`
		TargetCount int    `yaml:"target_count" default:"100"`

		MinDescriptionChars       int           `yaml:"min_description_chars" default:"100"`
		MinDescriptionWords       int           `yaml:"min_description_words" default:"10"`
		MaxSkills                 int           `yaml:"max_skills" default:"80"`
		EnglishIndicatorThreshold int           `yaml:"english_indicator_threshold" default:"3"`
		NavTimeoutSeconds         int           `yaml:"nav_timeout_s" default:"30"`
		MaxRetries                int           `yaml:"max_retries" default:"3"`
		BackoffBaseSeconds        float64       `yaml:"backoff_base_s" default:"2"`
		InitialConcurrency        int           `yaml:"initial_concurrency" default:"8"`
		MinConcurrency            int           `yaml:"min_concurrency" default:"2"`
		MaxConcurrency            int           `yaml:"max_concurrency" default:"10"`
		InitialDelaySeconds       float64       `yaml:"initial_delay_s" default:"2.5"`
		MaxDelaySeconds           float64       `yaml:"max_delay_s" default:"8.0"`
		JitterRangeSeconds        float64       `yaml:"jitter_range_s" default:"1.0"`
		BreakerRateLimitThreshold int           `yaml:"breaker_rate_limit_threshold" default:"3"`
		BreakerOpenSeconds        time.Duration `yaml:"breaker_open_s" default:"60s"`
		SessionLogPath            string        `yaml:"session_log_path"`
	} `yaml:"pipeline"`

	Store struct {
		DBPath        string `yaml:"db_path" default:"./data/jobpipe.db"`
		MaxOpenConns  int    `yaml:"max_open_conns" default:"10"`
	} `yaml:"store"`

	Browser struct {
		Headless         bool          `yaml:"headless" default:"true"`
		HeadlessDetail   bool          `yaml:"headless_detail" default:"false"`
		StealthMode      bool          `yaml:"stealth_mode" default:"true"`
		UserAgent        string        `yaml:"user_agent"`
		StorePath        string        `yaml:"browser_store_path"`
		NavigationGraceS time.Duration `yaml:"navigation_grace_s" default:"5s"`
		Proxy            struct {
			Enabled  bool          `yaml:"enabled" default:"false"`
			Endpoint string        `yaml:"endpoint"`
			APIKey   string        `yaml:"api_key"`
			Timeout  time.Duration `yaml:"timeout" default:"10s"`
		} `yaml:"proxy"`
	} `yaml:"browser"`

	Redis struct {
		Enabled  bool          `yaml:"enabled" default:"false"`
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		TTL      time.Duration `yaml:"ttl" default:"24h"`
	} `yaml:"redis"`

	Vocabulary struct {
		SkillsPath string `yaml:"skills_path" default:"./assets/skills.json"`
		RolesPath  string `yaml:"roles_path" default:"./assets/roles.json"`
	} `yaml:"vocabulary"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or
// $VAR syntax.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if present; ignore errors if it doesn't exist.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Pipeline.TargetCount = 100
	cfg.Pipeline.MinDescriptionChars = 100
	cfg.Pipeline.MinDescriptionWords = 10
	cfg.Pipeline.MaxSkills = 80
	cfg.Pipeline.EnglishIndicatorThreshold = 3
	cfg.Pipeline.NavTimeoutSeconds = 30
	cfg.Pipeline.MaxRetries = 3
	cfg.Pipeline.BackoffBaseSeconds = 2
	cfg.Pipeline.InitialConcurrency = 8
	cfg.Pipeline.MinConcurrency = 2
	cfg.Pipeline.MaxConcurrency = 10
	cfg.Pipeline.InitialDelaySeconds = 2.5
	cfg.Pipeline.MaxDelaySeconds = 8.0
	cfg.Pipeline.JitterRangeSeconds = 1.0
	cfg.Pipeline.BreakerRateLimitThreshold = 3
	cfg.Pipeline.BreakerOpenSeconds = 60 * time.Second

	cfg.Store.DBPath = "./data/jobpipe.db"
	cfg.Store.MaxOpenConns = 10

	cfg.Browser.Headless = true
	cfg.Browser.HeadlessDetail = false
	cfg.Browser.StealthMode = true
	cfg.Browser.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	cfg.Browser.NavigationGraceS = 5 * time.Second
	cfg.Browser.Proxy.Timeout = 10 * time.Second

	cfg.Redis.URL = "redis://localhost:6379"
	cfg.Redis.Timeout = 5 * time.Second
	cfg.Redis.TTL = 24 * time.Hour

	cfg.Vocabulary.SkillsPath = "./assets/skills.json"
	cfg.Vocabulary.RolesPath = "./assets/roles.json"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "stdout"

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.loadFromEnv()

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv overlays environment variables on top of file-loaded config.
func (c *Config) loadFromEnv() {
	if platform := os.Getenv("PIPELINE_PLATFORM"); platform != "" {
		c.Pipeline.Platform = platform
	}
	if role := os.Getenv("PIPELINE_INPUT_ROLE"); role != "" {
		c.Pipeline.InputRole = role
	}
	if location := os.Getenv("PIPELINE_LOCATION"); location != "" {
		c.Pipeline.Location = location
	}
	if targetCount := os.Getenv("PIPELINE_TARGET_COUNT"); targetCount != "" {
		if n, err := strconv.Atoi(targetCount); err == nil {
			c.Pipeline.TargetCount = n
		}
	}

	if dbPath := os.Getenv("STORE_DB_PATH"); dbPath != "" {
		c.Store.DBPath = dbPath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
		c.Redis.Enabled = true
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if proxyEndpoint := os.Getenv("BROWSER_PROXY_ENDPOINT"); proxyEndpoint != "" {
		c.Browser.Proxy.Endpoint = proxyEndpoint
		c.Browser.Proxy.Enabled = true
	}
	if proxyAPIKey := os.Getenv("BROWSER_PROXY_API_KEY"); proxyAPIKey != "" {
		c.Browser.Proxy.APIKey = proxyAPIKey
	}

	if skillsPath := os.Getenv("VOCAB_SKILLS_PATH"); skillsPath != "" {
		c.Vocabulary.SkillsPath = skillsPath
	}
	if rolesPath := os.Getenv("VOCAB_ROLES_PATH"); rolesPath != "" {
		c.Vocabulary.RolesPath = rolesPath
	}
}
