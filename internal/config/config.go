// config предоставляет структуру конфигурации newspulse
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Providers ProvidersConfig `yaml:"providers"`
	Auth      AuthConfig      `yaml:"auth"`
	Limits    LimitsConfig    `yaml:"limits"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к MongoDB (редакционные статьи).
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// ProvidersConfig — параметры движка агрегации и клиентов провайдеров.
type ProvidersConfig struct {
	// Active — провайдер по умолчанию: gnews | guardian.
	Active string `yaml:"active" env:"ACTIVE_PROVIDER" env-default:"gnews"`
	// Timeout — таймаут одного запроса к апстриму.
	Timeout time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT" env-default:"10s"`
	// PageSize — размер страницы категории.
	PageSize int `yaml:"page_size" env:"PROVIDER_PAGE_SIZE" env-default:"12"`
	// SearchPageSize — размер выборки поиска.
	SearchPageSize int `yaml:"search_page_size" env:"PROVIDER_SEARCH_PAGE_SIZE" env-default:"25"`
	// RPS — клиентский лимит обращений к провайдеру; 0 отключает.
	RPS float64 `yaml:"rps" env:"PROVIDER_RPS" env-default:"0"`

	GNews    UpstreamConfig `yaml:"gnews"`
	Guardian UpstreamConfig `yaml:"guardian"`
}

// UpstreamConfig — адрес и ключ одного провайдера.
type UpstreamConfig struct {
	BaseURL string `yaml:"base_url" env-default:""`
	APIKey  string `yaml:"api_key" env-default:""`
}

// AuthConfig — верификация админского bearer-токена.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer    string   `yaml:"issuer" env:"JWT_ISSUER" env-default:"newspulse"`
	Audience  []string `yaml:"audience" env:"JWT_AUDIENCE" env-separator:","`
}

// LimitsConfig — серверные лимиты на выдачу редакционных статей.
type LimitsConfig struct {
	// Применяется при запросе с limit=0.
	Default int `yaml:"default" env:"DEFAULT_LIMIT" env-default:"12"`
	// Верхняя граница для limit.
	Max int `yaml:"max" env:"MAX_LIMIT" env-default:"100"`
	// SearchScan — сколько свежих опубликованных документов сканирует поиск.
	SearchScan int `yaml:"search_scan" env:"SEARCH_SCAN" env-default:"200"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Providers.Active != "gnews" && c.Providers.Active != "guardian" {
		return fmt.Errorf("providers.active must be gnews or guardian")
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be > 0")
	}
	if c.Providers.PageSize <= 0 || c.Providers.SearchPageSize <= 0 {
		return fmt.Errorf("providers page sizes must be > 0")
	}
	if c.Limits.Default <= 0 || c.Limits.Max <= 0 {
		return fmt.Errorf("limits must be > 0")
	}
	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}
	return nil
}
