package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const fileScheme = "file://"

func sourceURL(migrationsPath string) string {
	if strings.HasPrefix(migrationsPath, fileScheme) {
		return migrationsPath
	}
	return fileScheme + migrationsPath
}

// LatestVersion возвращает номер последней миграции в каталоге
func LatestVersion(migrationsPath string) (uint, error) {
	if migrationsPath == "" {
		return 0, errors.New("путь к файлам миграций не может быть пустым")
	}

	src, err := source.Open(sourceURL(migrationsPath))
	if err != nil {
		return 0, fmt.Errorf("не удалось открыть каталог миграций: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("в каталоге нет миграций: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("ошибка чтения миграции после версии %d: %w", version, err)
		}
		version = next
	}
}

// RunMigrations применяет миграции таблицы курсов валют и возвращает
// версию схемы. База с версией выше последней миграции считается ошибкой.
func RunMigrations(dsn string, migrationsPath string) (uint, error) {
	if dsn == "" {
		return 0, errors.New("DSN для миграций не может быть пустым")
	}

	latest, err := LatestVersion(migrationsPath)
	if err != nil {
		return 0, err
	}

	m, err := migrate.New(sourceURL(migrationsPath), dsn)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("ошибка при проверке версии миграций: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("обнаружена 'грязная' миграция версии %d. Исправьте вручную", version)
	}
	if version != latest {
		return version, fmt.Errorf("версия схемы %d не совпадает с последней миграцией %d", version, latest)
	}

	return version, nil
}
