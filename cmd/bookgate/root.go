package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nao1215/bookgate/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd はbookgateのルートコマンドを生成する。
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookgate",
		Short: "書籍コンテンツゲートウェイ",
		Long: `bookgateは外部オリジンにある書籍HTMLを認証付きで配信するゲートウェイです。
参照元とセッショントークンを確認し、書籍レコードのURLから文書を取得して
<base>要素と保護スクリプトを挿入して返します。

設定はデフォルト値、設定ファイル（$XDG_CONFIG_HOME/bookgate/config.yaml）、
環境変数の順に読み込まれます。`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "設定ファイルのパス")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewBookCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute はルートコマンドを実行する。
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig は--configフラグを考慮して設定を読み込む。
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return cfg, nil
}
