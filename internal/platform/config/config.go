package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. It is built once at startup and
// passed explicitly into component constructors; nothing reads ambient state
// after FromEnv returns.
type Server struct {
	Addr string

	DatabaseURL  string
	DBLinkHost   string
	MaxOpenConns int

	FileBrowserURL string
	AdminerURL     string
	SFTPUser       string
	SFTPPort       int

	IdentityProviderURL  string
	JWTSigningKey        string
	IntrospectionTimeout time.Duration

	SitesRoot      string
	SizeProbeLimit time.Duration

	AuditSink         string // file, postgres, or kafka
	AuditLogPath      string
	AuditKafkaBrokers string
	AuditKafkaTopic   string

	RequestTimeout     time.Duration
	SummaryConcurrency int

	TrustedProxies []netip.Prefix
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getenv("FARMGATE_ADDR", ":8000"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBLinkHost:           getenv("DB_LINK_HOST", "proxysql"),
		MaxOpenConns:         getint("DB_MAX_OPEN_CONNS", 25),
		FileBrowserURL:       getenv("FILEBROWSER_URL", "https://files.yourdomain.com"),
		AdminerURL:           getenv("ADMINER_URL", "https://db.yourdomain.com"),
		SFTPUser:             getenv("SFTP_USER", "contractor"),
		SFTPPort:             getint("SFTP_PORT", 2222),
		IdentityProviderURL:  getenv("AUTHENTIK_URL", "https://authentik.yourdomain.com"),
		JWTSigningKey:        os.Getenv("JWT_SIGNING_KEY"),
		IntrospectionTimeout: getduration("INTROSPECTION_TIMEOUT", 5*time.Second),
		SitesRoot:            getenv("WORDPRESS_DATA_PATH", "/wordpress-data"),
		SizeProbeLimit:       getduration("SIZE_PROBE_TIMEOUT", 10*time.Second),
		AuditSink:            getenv("AUDIT_SINK", "file"),
		AuditLogPath:         getenv("AUDIT_LOG_PATH", "/var/log/audit/contractor-actions.log"),
		AuditKafkaBrokers:    os.Getenv("AUDIT_KAFKA_BROKERS"),
		AuditKafkaTopic:      getenv("AUDIT_KAFKA_TOPIC", "farmgate.audit"),
		RequestTimeout:       getduration("REQUEST_TIMEOUT", 30*time.Second),
		SummaryConcurrency:   getint("SUMMARY_CONCURRENCY", 4),
	}

	for _, cidr := range strings.Split(os.Getenv("TRUSTED_PROXIES"), ",") {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(cidr); err == nil {
			cfg.TrustedProxies = append(cfg.TrustedProxies, prefix)
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
