package helpers

import (
	"context"
	"encoding/json"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
)

// StoreJSON writes v to key as indented JSON.
func StoreJSON(ctx context.Context, s structs.Storage, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	return s.ObjectStore(ctx, key, data, structs.ObjectStoreOptions{ContentType: "application/json"})
}

// FetchJSON reads key into v. A missing key surfaces as a structs not found
// error.
func FetchJSON(ctx context.Context, s structs.Storage, key string, v interface{}) error {
	data, err := s.ObjectFetch(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", key)
	}

	return nil
}

// PrettyJSON re-indents raw JSON, returning the input unchanged when it does
// not parse.
func PrettyJSON(data []byte) []byte {
	var v interface{}

	if err := json.Unmarshal(data, &v); err != nil {
		return data
	}

	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return data
	}

	return pretty
}
