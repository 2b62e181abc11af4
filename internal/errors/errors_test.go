package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("bad header")
	wrapped := Wrap(base, "upload rejected")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "upload rejected: bad header", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk"), "reading %s", "a.csv")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "reading a.csv: disk", wrapped.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeSeesThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("dataset"))

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestInvalidInputf(t *testing.T) {
	cause := fmt.Errorf("record on line 3: wrong number of fields")
	err := InvalidInputf(cause, "could not parse %s", "data.csv")

	assert.Equal(t, "could not parse data.csv: record on line 3: wrong number of fields", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, Wrap(fmt.Errorf("unexpected EOF"), "failed to read upload"))

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "failed to read upload: unexpected EOF", err.Error())

	plain := WithCode(CodeRenderFailed, fmt.Errorf("no points"))
	assert.Equal(t, CodeRenderFailed, GetCode(plain))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestWrapSeesThroughFmtWrapping(t *testing.T) {
	inner := fmt.Errorf("reading sheet: %w", InvalidInput("bad header"))
	wrapped := Wrap(inner, "upload rejected")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "upload rejected: reading sheet: bad header", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWithCodeOnWrappedAppError(t *testing.T) {
	inner := fmt.Errorf("render: %w", RenderFailed(fmt.Errorf("no points")))
	err := WithCode(CodeInvalidInput, inner)

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "render: chart rendering failed: no points", err.Error())
	assert.True(t, stderrors.Is(err, inner))

	plain := WithCode(CodeNotFound, fmt.Errorf("gone"))
	assert.Equal(t, "gone", plain.Error())
}
