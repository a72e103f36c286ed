package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"notes-store/internal/repository"
	"notes-store/internal/repository/collection"

	"github.com/spf13/afero"
)

// DefaultPath путь к файлу хранилища по умолчанию
const DefaultPath = "data/notes.json"

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

var _ collection.Medium = (*medium)(nil)

// medium хранит документ коллекции в одном файле
type medium struct {
	fs   afero.Fs
	path string
}

// NewRepository создает репозиторий заметок, хранящий всю коллекцию в файле path.
// Отсутствующий файл считается пустой коллекцией и создается при первой записи
func NewRepository(fsys afero.Fs, path string, opts ...collection.Option) repository.NoteRepository {
	if path == "" {
		path = DefaultPath
	}
	return collection.NewRepository(&medium{fs: fsys, path: path}, opts...)
}

// NewOSRepository создает файловый репозиторий поверх файловой системы ОС
func NewOSRepository(path string, opts ...collection.Option) repository.NoteRepository {
	return NewRepository(afero.NewOsFs(), path, opts...)
}

// Load читает файл целиком
func (m *medium) Load(ctx context.Context) ([]byte, error) {
	data, err := afero.ReadFile(m.fs, m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, collection.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}
	return data, nil
}

// Save полностью перезаписывает файл, создавая каталог при необходимости
func (m *medium) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := m.fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(m.fs, m.path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	return nil
}
