package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/spf13/cobra"
)

// NewBookCmd はbookコマンドを生成する。
func NewBookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "書籍レコードを管理する",
	}
	cmd.AddCommand(newBookPutCmd())
	cmd.AddCommand(newBookGetCmd())
	cmd.AddCommand(newBookListCmd())
	cmd.AddCommand(newBookDeleteCmd())
	return cmd
}

func newBookPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <id>",
		Short: "書籍レコードを作成または更新する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			flags := cmd.Flags()
			b := &store.Book{ID: args[0]}
			b.IndexURL, _ = flags.GetString("url")
			b.Title, _ = flags.GetString("title")
			b.Author, _ = flags.GetString("author")
			b.IsPremium, _ = flags.GetBool("premium")
			if err := s.PutBook(cmd.Context(), b); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ 書籍 %s を保存しました\n", b.ID)
			return printBook(cmd, s, b.ID)
		},
	}
	cmd.Flags().String("url", "", "書籍HTMLの入口となる絶対URL")
	cmd.Flags().String("title", "", "タイトル")
	cmd.Flags().String("author", "", "著者")
	cmd.Flags().Bool("premium", false, "サブスクリプション限定にする")
	return cmd
}

func newBookGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "書籍レコードを表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			return printBook(cmd, s, args[0])
		},
	}
}

func newBookListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "書籍レコードを一覧表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			if limit <= 0 || offset < 0 {
				return fmt.Errorf("limitは正、offsetは0以上で指定してください")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			books, err := s.ListBooks(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range books {
				url := b.IndexURL
				if url == "" {
					url = color.RedString("(URLなし)")
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", color.CyanString(b.ID), b.Title, url)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "表示件数")
	cmd.Flags().Int("offset", 0, "開始位置")
	return cmd
}

func newBookDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "書籍レコードを削除する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.DeleteBook(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("書籍 %s の削除に失敗: %w", args[0], err)
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ 書籍 %s を削除しました\n", args[0])
			return nil
		},
	}
}

// printBook は書籍レコードをJSONで出力する。
func printBook(cmd *cobra.Command, s store.Store, id string) error {
	b, err := s.GetBook(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("書籍 %s の取得に失敗: %w", id, err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}
