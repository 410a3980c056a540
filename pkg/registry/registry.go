// Package registry maps device identifiers to operator names and to the
// viewer coordinates of the archive control. It is loaded once at startup.
package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

var log = logger.New("ns=registry")

type Camera struct {
	ID            string               `json:"id" yaml:"id"`
	Name          string               `json:"name" yaml:"name"`
	ArchiveButton *structs.Coordinates `json:"archiveButton,omitempty" yaml:"archiveButton,omitempty"`
}

type File struct {
	Cameras              []Camera             `json:"cameras" yaml:"cameras"`
	DefaultArchiveButton *structs.Coordinates `json:"defaultArchiveButton,omitempty" yaml:"defaultArchiveButton,omitempty"`
}

// Registry is a static structs.DeviceRegistry.
type Registry struct {
	cameras  map[string]Camera
	fallback structs.Coordinates
}

// New builds a registry from a parsed file. Coordinates in the file take
// precedence over def.
func New(f File, def structs.Coordinates) *Registry {
	r := &Registry{cameras: map[string]Camera{}, fallback: def}

	if f.DefaultArchiveButton != nil {
		r.fallback = *f.DefaultArchiveButton
	}

	for _, c := range f.Cameras {
		if id := lookupID(c.ID); id != "" {
			r.cameras[id] = c
		}
	}

	return r
}

// Parse decodes a registry document. JSON is tried first, then YAML.
func Parse(data []byte) (File, error) {
	var f File

	if err := json.Unmarshal(data, &f); err == nil {
		return f, nil
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, errors.Wrap(err, "invalid device registry")
	}

	return f, nil
}

// Load resolves the registry from source: inline JSON, a local file path, or
// when source is empty the registry object in storage. A missing registry
// object yields an empty registry.
func Load(ctx context.Context, source string, s structs.Storage, def structs.Coordinates) (*Registry, error) {
	log := log.At("load").Start()

	data, from, err := read(ctx, source, s)
	if err != nil {
		return nil, log.Error(err)
	}

	if data == nil {
		log.Logf("source=none cameras=0")
		return New(File{}, def), nil
	}

	f, err := Parse(data)
	if err != nil {
		return nil, log.Error(errors.Wrapf(err, "source %s", from))
	}

	log.Successf("source=%s cameras=%d", from, len(f.Cameras))

	return New(f, def), nil
}

func read(ctx context.Context, source string, s structs.Storage) ([]byte, string, error) {
	source = strings.TrimSpace(source)

	switch {
	case strings.HasPrefix(source, "{"):
		return []byte(source), "inline", nil
	case source != "":
		data, err := os.ReadFile(filepath.Clean(source))
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
		return data, "file", nil
	case s == nil:
		return nil, "", nil
	}

	data, err := s.ObjectFetch(ctx, keys.RegistryKey)
	if structs.ErrorNotFound(err) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch %s", keys.RegistryKey)
	}

	return data, "storage", nil
}

// DeviceName returns the configured name or the raw id when unknown.
func (r *Registry) DeviceName(id string) string {
	if c, ok := r.cameras[lookupID(id)]; ok && c.Name != "" {
		return c.Name
	}
	return id
}

// DeviceCoordinates returns the archive control position for a device,
// falling back to the registry default.
func (r *Registry) DeviceCoordinates(id string) structs.Coordinates {
	if c, ok := r.cameras[lookupID(id)]; ok && c.ArchiveButton != nil {
		return *c.ArchiveButton
	}
	return r.fallback
}

func (r *Registry) Len() int {
	return len(r.cameras)
}

// lookupID matches devices regardless of separators or case.
func lookupID(id string) string {
	return strings.ToUpper(keys.NormalizeDevice(id))
}
