// Package config собирает настройки клиента и relay из значений по умолчанию,
// файла .env, переменных окружения DEVSYNC_* и флагов командной строки
// (в порядке возрастания приоритета).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "DEVSYNC_"

// DefaultEnvFile файл, читаемый из рабочего каталога, если он есть
const DefaultEnvFile = ".env"

// lookupFunc источник переменных окружения
type lookupFunc func(key string) (string, bool)

// environment объединяет переменные процесса и значения из .env.
// Переменные процесса имеют приоритет над файлом.
type environment struct {
	lookup lookupFunc
	file   map[string]string
}

func newEnvironment(lookup lookupFunc, envFile string) (*environment, error) {
	env := &environment{lookup: lookup, file: map[string]string{}}
	if envFile == "" {
		return env, nil
	}

	values, err := godotenv.Read(envFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return env, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	env.file = values
	return env, nil
}

func (e *environment) get(name string) (string, bool) {
	key := EnvPrefix + name
	if v, ok := e.lookup(key); ok {
		return v, true
	}
	v, ok := e.file[key]
	return v, ok
}

func (e *environment) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *environment) duration(name string, dst *time.Duration) error {
	v, ok := e.get(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = d
	return nil
}

func (e *environment) integer(name string, dst *int) error {
	v, ok := e.get(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func processEnv() lookupFunc {
	return os.LookupEnv
}
