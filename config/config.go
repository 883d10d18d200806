package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/FACorreiaa/go-posts-api/internal/types"
)

//go:embed config.yml
var embeddedConfig []byte

// DefaultTokenTTL applies when jwt.tokenTTL is unset or not positive.
const DefaultTokenTTL = 30 * 24 * time.Hour

// JWTConfig configures token issuance and verification.
type JWTConfig struct {
	SecretKey         string        `mapstructure:"secretKey"`
	TokenTTL          time.Duration `mapstructure:"tokenTTL"`
	Issuer            string        `mapstructure:"issuer"`
	RevocationEnabled bool          `mapstructure:"revocationEnabled"`
}

// AuthConfig configures credential handling.
type AuthConfig struct {
	BcryptCost  int    `mapstructure:"bcryptCost"`
	DefaultRole string `mapstructure:"defaultRole"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	JWT  JWTConfig  `mapstructure:"jwt"`
	Auth AuthConfig `mapstructure:"auth"`
}

// InitConfig reads config.yml from the usual locations, falling back to the
// embedded copy. Environment variables prefixed with APP_ override file
// values, e.g. APP_JWT_SECRETKEY or APP_REPOSITORIES_POSTGRES_HOST.
func InitConfig() (Config, error) {
	v := newViper()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	cfg, err := Load(v)
	if err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "development")
	v.SetDefault("jwt.secretKey", "")
	v.SetDefault("jwt.tokenTTL", DefaultTokenTTL)
	v.SetDefault("jwt.issuer", "go-posts-api")
	v.SetDefault("jwt.revocationEnabled", false)
	v.SetDefault("auth.defaultRole", string(types.RoleUser))
	v.SetDefault("auth.bcryptCost", 10)
	return v
}

// Load unmarshals an already populated viper instance and fills defaults.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	if cfg.JWT.TokenTTL <= 0 {
		cfg.JWT.TokenTTL = DefaultTokenTTL
	}
	if cfg.Auth.DefaultRole == "" {
		cfg.Auth.DefaultRole = string(types.RoleUser)
	}
	return cfg, nil
}

// Validate reports configuration the server must not start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return fmt.Errorf("%w: jwt signing secret is empty (set APP_JWT_SECRETKEY)", types.ErrConfiguration)
	}
	if _, err := types.ParseRole(c.Auth.DefaultRole); err != nil {
		return fmt.Errorf("%w: auth.defaultRole: %v", types.ErrConfiguration, err)
	}
	return nil
}
