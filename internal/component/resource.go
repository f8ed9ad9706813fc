package component

import (
	"fmt"
	"io/fs"
)

// ResourceLoader returns the raw bytes of a named resource. The second return
// value is false if there's no such resource.
type ResourceLoader interface {
	LoadResource(name string) ([]byte, bool)
}

// ResourceLoaderFunc adapts a function to ResourceLoader.
type ResourceLoaderFunc func(name string) ([]byte, bool)

func (f ResourceLoaderFunc) LoadResource(name string) ([]byte, bool) {
	return f(name)
}

// FSLoader loads resources from a file system, typically an embed.FS
// holding the specs of packaged components.
type FSLoader struct {
	FS fs.FS
}

func (l FSLoader) LoadResource(name string) ([]byte, bool) {
	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, false
	}

	return data, true
}

// FromResource reads the component spec resource called `name` using `loader`.
func FromResource(loader ResourceLoader, name string) (*Spec, error) {
	data, ok := loader.LoadResource(name)
	if !ok || data == nil {
		return nil, fmt.Errorf(`component spec resource "%s": %w`, name, ErrResourceNotFound)
	}

	spec, err := FromDocument(data)
	if err != nil {
		return nil, fmt.Errorf(`component spec resource "%s": %w`, name, err)
	}

	return spec, nil
}
