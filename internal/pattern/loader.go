package pattern

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// File is the on-disk layout of a registry configuration.
type File struct {
	Categories []model.CategoryDefinition `mapstructure:"categories"`
	Signatures []model.DuplicateSignature `mapstructure:"duplicate_signatures"`
}

// LoadFile reads a YAML, JSON or TOML registry file. Unknown keys, unreadable
// files and invalid entries all fail with a *common.ConfigurationError.
func LoadFile(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, common.NewConfigurationError(path, "", fmt.Errorf("read: %w", err))
	}

	var f File
	if err := v.UnmarshalExact(&f); err != nil {
		return nil, common.NewConfigurationError(path, "", fmt.Errorf("decode: %w", err))
	}

	if len(f.Categories) == 0 {
		return nil, common.NewConfigurationError(path, "", fmt.Errorf("no categories defined"))
	}

	return newRegistry(filepath.Base(path), f.Categories, f.Signatures)
}

// Load returns the registry at path, or the built-in defaults when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return newRegistry("defaults", DefaultCategories(), DefaultSignatures())
	}
	return LoadFile(path)
}
