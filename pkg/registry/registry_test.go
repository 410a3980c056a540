package registry_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/registry"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/alarmvault/alarmvault/pkg/test"
	"github.com/convox/logger"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Output = &bytes.Buffer{}
}

var def = structs.Coordinates{X: 100, Y: 200}

const registryJSON = `{
  "cameras": [
    {"id": "aa:bb:cc:dd:ee:ff", "name": "Front Door", "archiveButton": {"x": 640, "y": 480}},
    {"id": "112233445566", "name": "Garage"}
  ]
}`

const registryYAML = `
cameras:
  - id: AABBCCDDEEFF
    name: Front Door
defaultArchiveButton:
  x: 10
  y: 20
`

func TestLoadInline(t *testing.T) {
	r, err := registry.Load(context.Background(), registryJSON, nil, def)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	require.Equal(t, "Front Door", r.DeviceName("AABBCCDDEEFF"))
	require.Equal(t, "Garage", r.DeviceName("11:22:33:44:55:66"))
	require.Equal(t, "FFFFFFFFFFFF", r.DeviceName("FFFFFFFFFFFF"))

	require.Equal(t, structs.Coordinates{X: 640, Y: 480}, r.DeviceCoordinates("AABBCCDDEEFF"))
	require.Equal(t, def, r.DeviceCoordinates("112233445566"))
	require.Equal(t, def, r.DeviceCoordinates("unknown"))
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.yml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0644))

	r, err := registry.Load(context.Background(), path, nil, def)
	require.NoError(t, err)

	require.Equal(t, "Front Door", r.DeviceName("AABBCCDDEEFF"))
	require.Equal(t, structs.Coordinates{X: 10, Y: 20}, r.DeviceCoordinates("AABBCCDDEEFF"))
}

func TestLoadStorage(t *testing.T) {
	s := test.NewStorage()
	s.Objects["metadata/cameras.json"] = test.StoredObject{Data: []byte(registryJSON)}

	r, err := registry.Load(context.Background(), "", s, def)
	require.NoError(t, err)
	require.Equal(t, "Front Door", r.DeviceName("AABBCCDDEEFF"))
}

func TestLoadStorageMissing(t *testing.T) {
	r, err := registry.Load(context.Background(), "", test.NewStorage(), def)
	require.NoError(t, err)
	require.Equal(t, 0, r.Len())
	require.Equal(t, "AABBCCDDEEFF", r.DeviceName("AABBCCDDEEFF"))
}

func TestLoadStorageError(t *testing.T) {
	s := test.NewStorage()
	s.Err["metadata/cameras.json"] = fmt.Errorf("access denied")

	_, err := registry.Load(context.Background(), "", s, def)
	require.EqualError(t, err, "fetch metadata/cameras.json: access denied")
}

func TestLoadInvalid(t *testing.T) {
	_, err := registry.Load(context.Background(), "{not json", nil, def)
	require.Error(t, err)
}
