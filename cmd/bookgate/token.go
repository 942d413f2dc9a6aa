package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewTokenCmd はtokenコマンドを生成する。
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "サービスアカウント鍵でセッショントークンを発行する",
		Long: `サービスアカウントの秘密鍵で署名したセッショントークンを発行します。
開発時のproxy-book呼び出しや管理APIの認証に使います。

例:
  # 管理者トークンを発行する
  bookgate token --subject admin-1 --admin

  # 有効期限を10分にする
  bookgate token --ttl 10m`,
		RunE: runToken,
	}
	cmd.Flags().StringP("subject", "s", "", "トークンの主体（省略時はUUID）")
	cmd.Flags().StringP("email", "e", "", "メールアドレス")
	cmd.Flags().Bool("admin", false, "管理者権限を付与する")
	cmd.Flags().Duration("ttl", time.Hour, "有効期間")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	subject, _ := cmd.Flags().GetString("subject")
	email, _ := cmd.Flags().GetString("email")
	admin, _ := cmd.Flags().GetBool("admin")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		return fmt.Errorf("ttlは正の値で指定してください: %s", ttl)
	}
	if subject == "" {
		subject = uuid.NewString()
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	token, err := verifier.Issue(subject, email, admin, ttl)
	if err != nil {
		return fmt.Errorf("トークンの発行に失敗: %w", err)
	}

	color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "subject=%s admin=%t expires_in=%s\n", subject, admin, ttl)
	if !cfg.AllowDevTokens {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "⚠ allow_dev_tokensが無効なため、このトークンはserveでは受け付けられません")
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
