package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServiceName prefixes every environment variable.
const ServiceName = "SCRATCH"

type Config struct {
	Addr     string
	DiagAddr string
	Routes   bool

	// DatabaseURL selects the Postgres store; empty means the
	// in-memory store.
	DatabaseURL string

	// AuthVerifyURL is the identity provider's token validation
	// endpoint; empty selects the static dev provider.
	AuthVerifyURL string
	SignInURL     string

	ImageCDNBase string
	Revalidate   time.Duration
}

// Load reads .env if present, then flags with environment defaults.
func Load() *Config {
	// Missing .env is fine; env vars and flags still apply.
	_ = godotenv.Load()

	var (
		routes     = flag.Bool("routes", getEnvBool(ServiceName+"_ROUTES", false), "Generate router documentation")
		addr       = flag.String("addr", getEnv(ServiceName+"_ADDR", ":3333"), "application port")
		diagAddr   = flag.String("diag_addr", getEnv(ServiceName+"_DIAG_ADDR", ":9999"), "diag port")
		dbURL      = flag.String("database_url", getEnv(ServiceName+"_DATABASE_URL", ""), "postgres dsn, empty for in-memory store")
		authURL    = flag.String("auth_verify_url", getEnv(ServiceName+"_AUTH_VERIFY_URL", ""), "identity provider verify endpoint")
		signInURL  = flag.String("signin_url", getEnv(ServiceName+"_SIGNIN_URL", "/"), "identity provider sign-in page")
		cdnBase    = flag.String("imagecdn_base", getEnv(ServiceName+"_IMAGECDN_BASE", ""), "image cdn base url")
		revalidate = flag.Duration("revalidate", getEnvDuration(ServiceName+"_REVALIDATE", 10*time.Second), "view page revalidation window")
	)

	flag.Parse()

	return &Config{
		Addr:          *addr,
		DiagAddr:      *diagAddr,
		Routes:        *routes,
		DatabaseURL:   *dbURL,
		AuthVerifyURL: *authURL,
		SignInURL:     *signInURL,
		ImageCDNBase:  *cdnBase,
		Revalidate:    *revalidate,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}

	return d
}
