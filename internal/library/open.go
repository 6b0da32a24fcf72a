package library

import "fmt"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the Store for backend rooted at path.
func Open(backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path, opts...)
	case BackendSQLite:
		return NewSQLiteStore(path, opts...)
	default:
		return nil, fmt.Errorf("unknown library backend %q", backend)
	}
}
