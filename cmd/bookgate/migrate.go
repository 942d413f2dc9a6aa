package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nao1215/bookgate/internal/config"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/spf13/cobra"
)

// NewMigrateCmd はmigrateコマンドを生成する。
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "レコードストアのスキーマを適用し状態を表示する",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	out := cmd.OutOrStdout()
	if cfg.Database.Driver != config.DriverSQLite {
		color.New(color.FgGreen).Fprintf(out, "✓ %sのスキーマを適用しました\n", cfg.Database.Driver)
		return nil
	}

	sqlite, ok := s.(*store.SQLite)
	if !ok {
		return fmt.Errorf("想定外のストア実装: %T", s)
	}
	statuses, err := sqlite.MigrationStatuses(cmd.Context())
	if err != nil {
		return fmt.Errorf("マイグレーション状態の取得に失敗: %w", err)
	}
	for _, st := range statuses {
		mark := color.GreenString("applied")
		if !st.Applied {
			mark = color.YellowString("pending")
		}
		fmt.Fprintf(out, "%06d_%s\t%s\n", st.Version, st.Name, mark)
	}
	return nil
}
