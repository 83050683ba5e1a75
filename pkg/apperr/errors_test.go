package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("bed %d not found", 3)))
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, KindBedUnavailable, KindOf(BedUnavailable("lost race")))
	assert.Equal(t, KindPrecondition, KindOf(Precondition("wrong order")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("no capability")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("bed 3 not found"))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Wrap(KindConflict, cause, "claim failed")

	assert.True(t, IsKind(err, KindConflict))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "claim failed: driver: bad connection", err.Error())
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	assert.ErrorIs(t, BedUnavailable("bed 1 is not vacant"), BedUnavailable("any"))
	assert.NotErrorIs(t, BedUnavailable("bed 1 is not vacant"), Conflict("any"))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{BedUnavailable("lost"), http.StatusConflict},
		{Precondition("order"), http.StatusPreconditionFailed},
		{Forbidden("denied"), http.StatusForbidden},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "%v", tc.err)
	}
}
