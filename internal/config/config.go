// Package config carga la configuración del gateway desde YAML con
// overrides por variables de entorno. La validación corre al arranque:
// un provider requerido sin base URL impide levantar el proceso en vez de
// fallar request a request.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Providers externos. Las base URLs son requeridas por componente; las
	// credenciales de proceso (identity API key, challenge secret) nunca se
	// loguean.
	Reputation struct {
		BaseURL string `yaml:"base_url"`
		// ProbeTarget es la IP canónica usada por la validación de API keys.
		ProbeTarget string `yaml:"probe_target"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"reputation"`

	Partner struct {
		BaseURL      string `yaml:"base_url"`
		TokenPath    string `yaml:"token_path"`
		DownloadPath string `yaml:"download_path"` // prefijo, se concatena /{version}/{name}
		Timeout      string `yaml:"timeout"`
	} `yaml:"partner"`

	Identity struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"identity"`

	Challenge struct {
		BaseURL    string `yaml:"base_url"`
		SiteSecret string `yaml:"site_secret"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"challenge"`

	MFA struct {
		// SessionTTL: cuánto vive una sesión de enrolamiento sin actividad
		// antes de ser expulsada (y su challenge liberado).
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"mfa"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Reputation.ProbeTarget == "" {
		c.Reputation.ProbeTarget = "8.8.8.8"
	}
	if c.Partner.TokenPath == "" {
		c.Partner.TokenPath = "/api/token"
	}
	if c.Partner.DownloadPath == "" {
		c.Partner.DownloadPath = "/downloads"
	}
	if c.MFA.SessionTTL == "" {
		c.MFA.SessionTTL = "15m"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}

	// Overrides por env
	c.applyEnvOverrides()

	// Las bases se usan con path-concatenation: sin slash final.
	c.Reputation.BaseURL = strings.TrimRight(strings.TrimSpace(c.Reputation.BaseURL), "/")
	c.Partner.BaseURL = strings.TrimRight(strings.TrimSpace(c.Partner.BaseURL), "/")
	c.Identity.BaseURL = strings.TrimRight(strings.TrimSpace(c.Identity.BaseURL), "/")
	c.Challenge.BaseURL = strings.TrimRight(strings.TrimSpace(c.Challenge.BaseURL), "/")

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate verifica que la configuración requerida esté presente y que las
// duraciones parseen. Falla el arranque, no un request.
func (c *Config) Validate() error {
	if c.Reputation.BaseURL == "" {
		return fmt.Errorf("config: reputation.base_url es requerido")
	}
	if c.Identity.BaseURL == "" {
		return fmt.Errorf("config: identity.base_url es requerido")
	}
	if c.Challenge.BaseURL == "" {
		return fmt.Errorf("config: challenge.base_url es requerido")
	}
	// Partner es opcional: si falta, los endpoints de partner degradan ese
	// request a un error de configuración (500) sin tumbar el resto.

	for name, v := range map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"mfa.session_ttl":      c.MFA.SessionTTL,
		"rate.window":          c.Rate.Window,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s inválido: %w", name, err)
		}
	}
	for name, v := range map[string]string{
		"reputation.timeout": c.Reputation.Timeout,
		"partner.timeout":    c.Partner.Timeout,
		"identity.timeout":   c.Identity.Timeout,
		"challenge.timeout":  c.Challenge.Timeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s inválido: %w", name, err)
		}
	}

	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.redis.addr es requerido con cache.kind=redis")
	}

	return nil
}

// MustDuration parsea una duración ya validada por Validate.
func MustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config: duración inválida %q pasó la validación", s))
	}
	return d
}

// DurationOr parsea s o retorna def si está vacío/inválido.
func DurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Las credenciales suelen venir solo por env (no se versiona el YAML con
// secretos).
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := getEnvStr("REPUTATION_BASE_URL"); ok {
		c.Reputation.BaseURL = v
	}
	if v, ok := getEnvStr("REPUTATION_PROBE_TARGET"); ok {
		c.Reputation.ProbeTarget = v
	}

	if v, ok := getEnvStr("PARTNER_BASE_URL"); ok {
		c.Partner.BaseURL = v
	}
	if v, ok := getEnvStr("PARTNER_TOKEN_PATH"); ok {
		c.Partner.TokenPath = v
	}
	if v, ok := getEnvStr("PARTNER_DOWNLOAD_PATH"); ok {
		c.Partner.DownloadPath = v
	}

	if v, ok := getEnvStr("IDENTITY_BASE_URL"); ok {
		c.Identity.BaseURL = v
	}
	if v, ok := getEnvStr("IDENTITY_API_KEY"); ok {
		c.Identity.APIKey = v
	}

	if v, ok := getEnvStr("CHALLENGE_BASE_URL"); ok {
		c.Challenge.BaseURL = v
	}
	if v, ok := getEnvStr("CHALLENGE_SITE_SECRET"); ok {
		c.Challenge.SiteSecret = v
	}

	if v, ok := getEnvStr("MFA_SESSION_TTL"); ok {
		c.MFA.SessionTTL = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
}
