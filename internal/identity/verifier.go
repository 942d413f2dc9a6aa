package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken はトークンの検証に失敗した場合に返される。
	ErrInvalidToken = errors.New("トークンが無効です")
	// ErrUnknownKey はトークンのkidに対応する鍵が見つからない場合に返される。
	ErrUnknownKey = errors.New("署名鍵が見つかりません")
)

const (
	// issuerPrefix はIDトークンの発行者URLの接頭辞。
	issuerPrefix = "https://securetoken.google.com/"
	// maxSubjectLength はsubクレームの最大長。
	maxSubjectLength = 128
)

// ServiceAccount はVerifierが使うサービスアカウントの認証情報。
type ServiceAccount struct {
	// ProjectID は発行者とオーディエンスを決めるプロジェクトID。
	ProjectID string
	// ClientEmail はサービスアカウントのメールアドレス。
	ClientEmail string
	// PrivateKey はPEM形式のRSA秘密鍵。改行は正規化済みであること。
	PrivateKey string
}

// Claims は検証済みトークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
	// Email はユーザーのメールアドレス。
	Email string `json:"email,omitempty"`
	// Admin は管理者権限を持つかどうか。
	Admin bool `json:"admin,omitempty"`
}

// KeySource はkidから検証用の公開鍵を引く。
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// Verifier はベアラートークンを検証し、主体を返す。
// 生成後は読み取り専用で、複数のリクエストから並行に利用できる。
type Verifier struct {
	projectID   string
	clientEmail string
	privateKey  *rsa.PrivateKey
	certs       KeySource
	now         func() time.Time
	// devTokens はkidを持たないサービスアカウント署名のトークンを受け付けるかどうか。
	devTokens bool
}

// Option はVerifierの設定を変更する関数。
type Option func(*Verifier)

// WithKeySource はkid付きトークンの検証に使う鍵ソースを設定する。
func WithKeySource(ks KeySource) Option {
	return func(v *Verifier) { v.certs = ks }
}

// WithDevTokens はkidを持たないトークンをサービスアカウントの公開鍵で検証するかを設定する。
// Issueで発行した開発用トークンを受け付けたい場合にだけ有効にする。既定は無効。
func WithDevTokens(enabled bool) Option {
	return func(v *Verifier) { v.devTokens = enabled }
}

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier はサービスアカウントから新しいVerifierを生成する。
// 秘密鍵のパースはここで一度だけ行う。
func NewVerifier(sa ServiceAccount, opts ...Option) (*Verifier, error) {
	if sa.ProjectID == "" {
		return nil, errors.New("プロジェクトIDが空です")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("サービスアカウント秘密鍵のパースに失敗: %w", err)
	}

	v := &Verifier{
		projectID:   sa.ProjectID,
		clientEmail: sa.ClientEmail,
		privateKey:  key,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Issuer はトークンの発行者URLを返す。
func (v *Verifier) Issuer() string {
	return issuerPrefix + v.projectID
}

// Verify はトークンを検証し、成功した場合はクレームを返す。
// 署名・有効期限・発行者・オーディエンス・主体のいずれかが不正なら ErrInvalidToken を返す。
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.Issuer()),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subが空です", ErrInvalidToken)
	}
	if len(claims.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: subが%d文字を超えています", ErrInvalidToken, maxSubjectLength)
	}
	return claims, nil
}

// keyFunc はトークンヘッダーのkidに応じて検証鍵を選ぶ。
func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			if !v.devTokens {
				return nil, fmt.Errorf("%w: kidがありません", ErrUnknownKey)
			}
			return &v.privateKey.PublicKey, nil
		}
		if v.certs == nil {
			return nil, ErrUnknownKey
		}
		return v.certs.PublicKey(ctx, kid)
	}
}

// Issue はサービスアカウントの鍵で署名したトークンを発行する。
// 開発用トークンやCLIからの発行に使う。
func (v *Verifier) Issue(subject, email string, admin bool, ttl time.Duration) (string, error) {
	if subject == "" || len(subject) > maxSubjectLength {
		return "", fmt.Errorf("subjectは1から%d文字で指定してください", maxSubjectLength)
	}
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.Issuer(),
			Subject:   subject,
			Audience:  jwt.ClaimStrings{v.projectID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Admin: admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(v.privateKey)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}
