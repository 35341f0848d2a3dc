package config

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=1,lte=5"`
	Mode  string `validate:"oneof=fast slow"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sample{Name: "a", Count: 1, Mode: "fast"}))

	err := Validate(sample{Count: 9, Mode: "medium"})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 3)

	names := make([]string, 0, 3)
	for _, e := range merr.Errors {
		var invalid *rainbowerrors.ErrInvalidArgument
		require.True(t, errors.As(e, &invalid))
		names = append(names, invalid.Name)
	}
	assert.ElementsMatch(t, []string{"Name", "Count", "Mode"}, names)
}

type level int

func TestStringToTypeHookFunc(t *testing.T) {
	hook := StringToTypeHookFunc(func(s string) (level, error) {
		n, err := strconv.Atoi(s)
		return level(n), err
	})

	out, err := hook(reflect.TypeOf(""), reflect.TypeOf(level(0)), "3")
	require.NoError(t, err)
	assert.Equal(t, level(3), out)

	out, err = hook(reflect.TypeOf(""), reflect.TypeOf(""), "3")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	_, err = hook(reflect.TypeOf(""), reflect.TypeOf(level(0)), "x")
	assert.Error(t, err)
}
