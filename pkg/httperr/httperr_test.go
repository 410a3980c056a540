package httperr_test

import (
	"fmt"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNil(t *testing.T) {
	require.Nil(t, httperr.New(500, nil))
	require.Nil(t, httperr.Classify(nil))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{structs.ValidationError{Field: "alarm", Reason: "alarm object is required"}, 400},
		{errors.Wrap(structs.ValidationError{Reason: "invalid json"}, "parse"), 400},
		{structs.NotFound("no such key: %s", "a.json"), 404},
		{errors.Wrap(structs.NotFound("no such key"), "fetch"), 404},
		{fmt.Errorf("connection reset"), 500},
		{httperr.Errorf(409, "conflict"), 409},
	}

	for _, tt := range tests {
		e := httperr.Classify(tt.err)
		assert.Equal(t, tt.code, e.Code(), tt.err.Error())
		assert.Equal(t, tt.err.Error(), e.Error())
	}
}

func TestServerUser(t *testing.T) {
	s := httperr.Server(fmt.Errorf("boom"))
	require.True(t, s.Server())
	require.False(t, s.User())

	u := httperr.NotFound(fmt.Errorf("missing"))
	require.True(t, u.User())
	require.False(t, u.Server())
	require.Equal(t, 404, u.Code())
}

func TestSaveWithoutToken(t *testing.T) {
	httperr.Configure("", "")
	httperr.Server(fmt.Errorf("boom")).Save("test")
}
