package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile はXDG設定ディレクトリ配下の設定ファイルの相対パス。
var DefaultConfigFile = filepath.Join("bookgate", "config.yaml")

// resolveConfigFile は読み込む設定ファイルのパスを決める。
// 明示されたパスが存在しなければ ErrConfigNotFound を返す。
// 暗黙の探索で見つからなければ空文字列を返す。
func resolveConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", ErrConfigNotFound
			}
			return "", err
		}
		return path, nil
	}

	found, err := xdg.SearchConfigFile(DefaultConfigFile)
	if err != nil {
		return "", nil //nolint:nilerr // 暗黙の設定ファイルは任意
	}
	return found, nil
}

// mergeFile はYAMLファイルの内容を設定に上書きする。
// ファイルに書かれていない項目は現在の値を保持する。
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // 利用者指定の設定パス
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrConfigNotFound
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}
