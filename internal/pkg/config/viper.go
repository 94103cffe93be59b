package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Viper is a Config backed by github.com/spf13/viper with live reload on
// file change.
type Viper struct {
	v *viper.Viper
}

// NewViper loads configuration from pathFile. The format is inferred from the
// file extension, and the file is watched for changes.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()

	filename := path.Base(pathFile)
	name := filename[:len(filename)-len(path.Ext(filename))]

	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(path.Base(name))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "err", err)
			return
		}
		slog.Info("config reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory. configType must be a
// format viper understands ("yaml", "json", ...). Mostly used by tests.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Viper{v: v}, nil
}

// GetString returns the value for key as a string.
func (vc *Viper) GetString(key string) string { return vc.v.GetString(key) }

// GetBool returns the value for key as a bool.
func (vc *Viper) GetBool(key string) bool { return vc.v.GetBool(key) }

// GetInt returns the value for key as an int.
func (vc *Viper) GetInt(key string) int { return vc.v.GetInt(key) }

// GetInt32 returns the value for key as an int32.
func (vc *Viper) GetInt32(key string) int32 { return vc.v.GetInt32(key) }

// GetInt64 returns the value for key as an int64.
func (vc *Viper) GetInt64(key string) int64 { return vc.v.GetInt64(key) }

// GetUint returns the value for key as a uint.
func (vc *Viper) GetUint(key string) uint { return vc.v.GetUint(key) }

// GetFloat64 returns the value for key as a float64.
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }

// GetSecond returns the integer value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the integer value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetHour returns the integer value for key as hours.
func (vc *Viper) GetHour(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Hour
}

// GetDay returns the integer value for key as days (24h).
func (vc *Viper) GetDay(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * 24 * time.Hour
}

// GetArray returns the value for key split on commas.
func (vc *Viper) GetArray(key string) []string {
	return strings.Split(vc.v.GetString(key), ",")
}

// GetMap returns the value for key parsed from "k1:v1,k2:v2" pairs.
func (vc *Viper) GetMap(key string) map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(vc.v.GetString(key), ",") {
		if k, v, ok := strings.Cut(pair, ":"); ok {
			m[k] = v
		}
	}
	return m
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}
	return data
}

// Close implements io.Closer; viper holds no resources that need closing.
func (vc *Viper) Close() error {
	return nil
}
