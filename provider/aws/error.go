package aws

import (
	"fmt"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/structs"
)

// ErrNotConfigured is returned when an operation needs a resource the
// provider was not given.
type ErrNotConfigured string

func (e ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", string(e))
}

func (e ErrNotConfigured) NotConfigured() bool {
	return true
}

// storageError maps missing objects to structs not found errors and leaves
// everything else as an infrastructure failure.
func storageError(err error, key string) error {
	if err == nil {
		return nil
	}

	if helpers.AwsNotFound(err) {
		return structs.NotFound("no such key: %s", key)
	}

	return err
}
