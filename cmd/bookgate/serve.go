package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/nao1215/bookgate/internal/gateway"
	"github.com/nao1215/bookgate/pkg/httpclient"
	"github.com/spf13/cobra"
)

// NewServeCmd はserveコマンドを生成する。
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "ゲートウェイのHTTPサーバーを起動する",
		Long: `ゲートウェイのHTTPサーバーを起動します。
SIGINTまたはSIGTERMを受け取ると処理中のリクエストを待ってから停止します。`,
		RunE: runServe,
	}
	cmd.Flags().StringP("port", "p", "", "リッスンポート（設定値を上書き）")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	books, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := books.Close(); err != nil {
			log.Printf("[Store] 接続のクローズに失敗: %v", err)
		}
	}()

	server, err := gateway.NewServer(cfg, gateway.Deps{
		Verifier: verifier,
		Books:    books,
		Fetcher:  httpclient.New(httpclient.WithTimeout(cfg.UpstreamTimeout)),
	})
	if err != nil {
		return err
	}

	color.Green("✓ bookgateを起動します: :%s", cfg.Port)
	color.White("  正規オリジン: %s", cfg.CanonicalOrigin)
	color.White("  レコードストア: %s", cfg.Database.Driver)
	if cfg.AllowDevTokens {
		color.Yellow("  ⚠ 開発用トークン（kidなし）を受け付けます")
	}
	if err := server.Run(ctx); err != nil {
		return err
	}
	color.Yellow("bookgateを停止しました")
	return nil
}
