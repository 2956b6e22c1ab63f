package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// LoadDocument reads a fixture file as a Document whose path is relative to
// root and slash separated.
func LoadDocument(root, path string) (interfaces.Document, error) {
	data, err := LoadFixture(filepath.Join(root, path))
	if err != nil {
		return interfaces.Document{}, err
	}
	return interfaces.Document{
		Path:    filepath.ToSlash(path),
		Content: string(data),
	}, nil
}
