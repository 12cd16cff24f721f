package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code int
	}{
		{"not found", NotFound("task %s", "dt-1"), ErrNotFound, 3},
		{"forbidden", Forbidden("nope"), ErrForbidden, 4},
		{"invalid", InvalidArgument("bad %d", 1), ErrInvalidArgument, 2},
		{"conflict", Conflict("dup"), ErrConflict, 5},
		{"internal", Internal(errors.New("boom"), "save"), ErrInternal, 1},
		{"foreign", errors.New("plain"), ErrInternal, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Kind(tt.err), tt.kind)
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}
}

func TestErrorMessageAndWrapping(t *testing.T) {
	err := NotFound("task %s not found", "dt-abc")
	assert.Equal(t, "task dt-abc not found", err.Error())

	wrapped := fmt.Errorf("load: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrConflict)

	cause := errors.New("disk full")
	internal := Internal(cause, "save task")
	assert.Equal(t, "save task: disk full", internal.Error())
	assert.ErrorIs(t, internal, cause)
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "x"))
	assert.ErrorIs(t, FromDB(gorm.ErrRecordNotFound, "task %s", "a"), ErrNotFound)
	assert.ErrorIs(t, FromDB(gorm.ErrDuplicatedKey, "tag"), ErrConflict)
	assert.ErrorIs(t, FromDB(errors.New("locked"), "tag"), ErrInternal)

	kept := Forbidden("owner only")
	assert.Same(t, kept, FromDB(kept, "ignored"))
}
