package appconfig

import (
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// FileLoader loads configuration from a YAML/JSON/TOML file (by
// extension), overridable by environment variables, and validates the
// result with struct tags.
type FileLoader struct {
	viper    *viper.Viper
	validate *validator.Validate
	defaults map[string]any
}

// NewFileLoader builds a FileLoader reading name from the given search
// paths. defaults is applied via viper.SetDefault before the file is read,
// so an absent key still resolves to a sane value.
func NewFileLoader(name string, paths []string, defaults map[string]any) *FileLoader {
	v := viper.New()
	extension := path.Ext(name)
	configType := strings.TrimPrefix(extension, ".")

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(strings.TrimSuffix(path.Base(name), extension))
	v.SetConfigType(configType)

	v.SetEnvPrefix("NFCAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	return &FileLoader{viper: v, validate: validator.New(), defaults: defaults}
}

// Load reads the configured file (if present — a missing file is not an
// error as long as env vars and defaults cover every required field),
// unmarshals into target, and validates it.
func (l *FileLoader) Load(target any) error {
	if err := l.viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return apperrors.Wrap(err, apperrors.Validation, "reading config file")
		}
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return apperrors.Wrap(err, apperrors.Validation, "parsing config")
	}

	if err := l.validate.Struct(target); err != nil {
		return apperrors.Wrap(err, apperrors.Validation, "config validation failed")
	}

	return nil
}

// Watch registers callback to fire on every detected config-file change.
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}
