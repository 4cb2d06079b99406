// Package config는 viper 기반 설정 로딩을 제공합니다.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 설정 디렉토리 경로
const configDir = "configs"

// Options는 Load 동작을 조정합니다.
type Options struct {
	// EnvPrefix 환경 변수 접두사 (예: COURSEPEDIA → COURSEPEDIA_DATABASE_HOST)
	EnvPrefix string
	// Defaults 키별 기본값. 여기에 등록된 키만 환경 변수로 덮어쓸 수 있습니다.
	Defaults map[string]interface{}
	// DotEnvFiles 먼저 읽어 들일 .env 파일 목록. 없는 파일은 무시합니다.
	DotEnvFiles []string
}

// Load는 서비스 설정 파일을 읽어 target 구조체에 바인딩합니다.
//
// CONFIG_PATH가 파일을 가리키면 그 파일을, 아니면 configs/{APP_ENV}/{service}.yaml,
// configs/{service}.yaml 순서로 찾습니다. 파일이 전혀 없어도 기본값과 환경 변수만으로
// 바인딩을 진행합니다.
func Load(serviceName string, target interface{}, opts Options) error {
	if err := loadDotEnv(opts.DotEnvFiles); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = serviceName
	}
	v.SetEnvPrefix(strings.ToUpper(prefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	if err := readConfigFile(v, serviceName); err != nil {
		return err
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("설정 바인딩 실패: %w", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, serviceName string) error {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("설정 파일 로드 실패: %w", err)
			}
			return nil
		}
		v.AddConfigPath(configPath)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 기본 환경은 dev
	}
	v.SetConfigName(serviceName)
	v.AddConfigPath(filepath.Join(configDir, env))
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("설정 파일 로드 실패: %w", err)
	}
	return nil
}

func loadDotEnv(files []string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf(".env 로드 실패 (%s): %w", file, err)
		}
	}
	return nil
}
