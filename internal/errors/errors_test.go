package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"groupstats/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("row limit must be positive")
	wrapped := Wrap(base, "failed to load configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load configuration: row limit must be positive", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "writing %s", "out.csv")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestStageErrorsExposeSentinels(t *testing.T) {
	err := DecodeError(4, core.NewCoercionError("x", "ten", fmt.Errorf("invalid syntax")))

	assert.Equal(t, CodeDecodeError, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrCoercionFailed))
	assert.Contains(t, err.Error(), "decode row 4")
	assert.Contains(t, err.Error(), `"ten"`)

	grp := GroupError([]string{"cat"}, core.NewMissingHeaderError("cat"))
	assert.True(t, stderrors.Is(grp, core.ErrMissingHeader))
	assert.Contains(t, grp.Error(), "group [cat]")
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.False(t, IsAppError(fmt.Errorf("plain")))
	assert.True(t, IsAppError(fmt.Errorf("outer: %w", ImportError("read", nil))))
}
