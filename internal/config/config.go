package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DriverSQLite は組み込みSQLiteのレコードストアを表す。
	DriverSQLite = "sqlite"
	// DriverPostgres はPostgreSQLのレコードストアを表す。
	DriverPostgres = "postgres"

	// DefaultGoogleCertsURL はFirebase IDトークンの署名証明書の公開URL。
	DefaultGoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
)

// Config はbookgateの全設定を保持する。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port"`
	// CanonicalOrigin はプラットフォームの正規オリジン（例: https://vault.example.com）。
	// Referer許可リストと保護スクリプトのリダイレクト先の両方に使う。
	CanonicalOrigin string `yaml:"canonical_origin"`
	// FrontendOrigins は管理APIへのCORSを許可するオリジン。
	FrontendOrigins []string `yaml:"frontend_origins"`
	// ServiceAccount はIdentity Verifierが使うサービスアカウント。
	ServiceAccount ServiceAccount `yaml:"service_account"`
	// GoogleCertsURL はkid付きトークンを検証する証明書の取得先。空なら無効。
	GoogleCertsURL string `yaml:"google_certs_url"`
	// AllowDevTokens はbookgate tokenで発行したkidの無いトークンを受け付けるかどうか。
	// 本番では無効にしておく。
	AllowDevTokens bool `yaml:"allow_dev_tokens"`
	// Database はレコードストアの接続設定。
	Database Database `yaml:"database"`
	// UpstreamTimeout はコンテンツオリジン取得のタイムアウト。既定の0は無制限。
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

// ServiceAccount はサービスアカウントの認証情報。
type ServiceAccount struct {
	ProjectID   string `yaml:"project_id"`
	ClientEmail string `yaml:"client_email"`
	PrivateKey  string `yaml:"private_key"`
}

// Database はレコードストアの接続設定。
type Database struct {
	// Driver は "sqlite" または "postgres"。
	Driver string `yaml:"driver"`
	// DSN はドライバ固有の接続文字列。
	DSN string `yaml:"dsn"`
}

// Default はデフォルト値で埋めた設定を返す。
func Default() *Config {
	return &Config{
		Port:            "8080",
		FrontendOrigins: []string{"http://localhost:5173"},
		GoogleCertsURL:  DefaultGoogleCertsURL,
		Database: Database{
			Driver: DriverSQLite,
			DSN:    "bookgate.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		},
	}
}

// Load はデフォルト値・設定ファイル・環境変数の順に設定を読み込み、検証する。
// pathが空の場合はXDG設定ディレクトリのファイルを探し、無ければスキップする。
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := resolveConfigFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		if err := cfg.mergeFile(file); err != nil {
			return nil, fmt.Errorf("設定ファイル %s の読み込みに失敗: %w", file, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ServiceAccount.PrivateKey = NormalizePrivateKey(cfg.ServiceAccount.PrivateKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は環境変数で設定を上書きする。lookupはテストで差し替えられる。
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &c.Port)
	set("CANONICAL_ORIGIN", &c.CanonicalOrigin)
	set("FIREBASE_PROJECT_ID", &c.ServiceAccount.ProjectID)
	set("FIREBASE_CLIENT_EMAIL", &c.ServiceAccount.ClientEmail)
	set("FIREBASE_PRIVATE_KEY", &c.ServiceAccount.PrivateKey)
	set("GOOGLE_CERTS_URL", &c.GoogleCertsURL)
	set("DATABASE_DRIVER", &c.Database.Driver)
	set("DATABASE_URL", &c.Database.DSN)

	if v, ok := lookup("FRONTEND_URL"); ok && v != "" {
		c.FrontendOrigins = splitList(v)
	}
	if v, ok := lookup("ALLOW_DEV_TOKENS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALLOW_DEV_TOKENS の解析に失敗: %w", err)
		}
		c.AllowDevTokens = b
	}
	if v, ok := lookup("UPSTREAM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT の解析に失敗: %w", err)
		}
		c.UpstreamTimeout = d
	}
	return nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	if c.CanonicalOrigin == "" {
		return ErrNoCanonicalOrigin
	}
	u, err := url.Parse(c.CanonicalOrigin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidCanonicalOrigin
	}

	sa := c.ServiceAccount
	if sa.ProjectID == "" || sa.ClientEmail == "" || sa.PrivateKey == "" {
		return ErrIncompleteServiceAccount
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDatabaseDriver, c.Database.Driver)
	}

	if c.UpstreamTimeout < 0 {
		return ErrInvalidUpstreamTimeout
	}
	return nil
}

// CanonicalHost は正規オリジンのホスト部分を返す。Referer照合に使う。
func (c *Config) CanonicalHost() string {
	u, err := url.Parse(c.CanonicalOrigin)
	if err != nil {
		return ""
	}
	return u.Host
}

// NormalizePrivateKey は環境変数経由で渡されたPEM秘密鍵を正規化する。
// リテラルの "\n" を改行に戻し、混入したダブルクォートを取り除く。
func NormalizePrivateKey(key string) string {
	key = strings.ReplaceAll(key, `\n`, "\n")
	return strings.ReplaceAll(key, `"`, "")
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
