package main

import (
	"context"
	"fmt"

	"github.com/nao1215/bookgate/internal/config"
	"github.com/nao1215/bookgate/internal/identity"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/nao1215/bookgate/pkg/httpclient"
)

// newVerifier は設定からIdentity Verifierを生成する。
// 証明書URLが設定されていればkid付きトークンをGoogleの公開証明書で検証する。
// kidの無い開発用トークンはAllowDevTokensが有効な場合だけ受け付ける。
func newVerifier(cfg *config.Config) (*identity.Verifier, error) {
	opts := []identity.Option{identity.WithDevTokens(cfg.AllowDevTokens)}
	if cfg.GoogleCertsURL != "" {
		opts = append(opts, identity.WithKeySource(identity.NewCertSet(cfg.GoogleCertsURL, httpclient.New())))
	}
	v, err := identity.NewVerifier(identity.ServiceAccount{
		ProjectID:   cfg.ServiceAccount.ProjectID,
		ClientEmail: cfg.ServiceAccount.ClientEmail,
		PrivateKey:  cfg.ServiceAccount.PrivateKey,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("Identity Verifierの初期化に失敗: %w", err)
	}
	return v, nil
}

// openStore は設定のドライバでレコードストアを開く。
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("レコードストアの接続に失敗: %w", err)
	}
	return s, nil
}
