package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("page", 1).Status())
	assert.Equal(t, http.StatusForbidden, AccessDenied("nope").Status())
	assert.Equal(t, http.StatusUnprocessableEntity, Validation(map[string]string{"answers": "required"}).Status())
	assert.Equal(t, http.StatusConflict, OrderingConflict(nil).Status())
	assert.Equal(t, http.StatusInternalServerError, (&Error{}).Status())
}

func TestNotFoundIfMissing(t *testing.T) {
	err := NotFoundIfMissing(fmt.Errorf("load: %w", gorm.ErrRecordNotFound), "module", 7)
	require.True(t, Is(err, KindNotFound))
	assert.Equal(t, "module 7 not found", err.Error())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	other := fmt.Errorf("boom")
	assert.Same(t, other, NotFoundIfMissing(other, "module", 7))
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("complete page: %w", AccessDenied("complete page 2 first"))
	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindAccessDenied, e.Kind)
	assert.False(t, Is(wrapped, KindNotFound))
}
