package uploader

import (
	"errors"
	"strings"
	"testing"
	"time"

	"anonboard/internal/pkg/config"
	"anonboard/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	key, err := ObjectKey(now, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "20240309/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	key, err = ObjectKey(now, "image/jpeg; charset=binary")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestExtensionRejectsUnsupported(t *testing.T) {
	for _, ct := range []string{"", "text/html", "application/x-sh"} {
		_, err := Extension(ct)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument), ct)
	}
}

func TestNewBlobStoreDisabled(t *testing.T) {
	store, err := NewBlobStore(config.OSSConfig{})
	assert.NoError(t, err)
	assert.Nil(t, store)
}
