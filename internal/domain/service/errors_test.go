package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("handler: %w", NotFound("abc", cause))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, &Error{Kind: KindNotFound})
	assert.NotErrorIs(t, wrapped, &Error{Kind: KindInvalidID})
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "creature pikachu is already registered", AlreadyExists("pikachu", nil).Error())
	assert.Contains(t, AlreadyExistsConflict("pikachu", "1234").Error(), "1234")
	assert.Equal(t, "creature mewtwo123 not found upstream", UpstreamNotFound("mewtwo123", nil).Error())
	assert.Equal(t, "already_exists", KindAlreadyExists.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
