package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wrappedError struct {
	inner error
}

func (e *wrappedError) Error() string { return "wrapped: " + e.inner.Error() }
func (e *wrappedError) Unwrap() error { return e.inner }

func TestExtractStack(t *testing.T) {
	assert.Nil(t, ExtractStack(fmt.Errorf("plain")))

	withStack := errors.WithStack(fmt.Errorf("plain"))
	assert.NotNil(t, ExtractStack(withStack))
	assert.NotNil(t, ExtractStack(errors.WithMessage(withStack, "context")))
	assert.NotNil(t, ExtractStack(&wrappedError{inner: withStack}))
}

func TestWithStacktrace(t *testing.T) {
	logger := logrus.NewEntry(NullLogger)
	err := errors.New("test error")

	entry := WithStacktrace(logger, err)
	assert.Equal(t, err, entry.Data[logrus.ErrorKey])
	assert.Equal(t, err.(stackTracer).StackTrace(), entry.Data[Stacktrace])
}

func TestConfigureLogging(t *testing.T) {
	defer ConfigureCommandLineLogging()

	buf := new(bytes.Buffer)
	require.NoError(t, ConfigureLogging(Config{Level: "warn", Format: FormatMessage}, buf))

	logrus.Info("hidden")
	logrus.Warn("shown")
	assert.Equal(t, "shown\n", buf.String())
}

func TestConfigureLogging_Invalid(t *testing.T) {
	assert.Error(t, ConfigureLogging(Config{Level: "loud", Format: FormatText}, new(bytes.Buffer)))
	assert.Error(t, ConfigureLogging(Config{Level: "info", Format: "xml"}, new(bytes.Buffer)))
}
