package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefull/backend/internal/testhelpers"
)

func TestSaveBase64(t *testing.T) {
	store := testhelpers.NewMemoryImageStore()
	svc := NewImageService(store)

	raw := []byte{0x89, 'P', 'N', 'G'}
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	url, err := svc.SaveBase64(context.Background(), payload, "recipes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://images.test/recipes/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	require.Len(t, store.Objects, 1)
	for _, data := range store.Objects {
		assert.Equal(t, raw, data)
	}
}

func TestSaveBase64Rejections(t *testing.T) {
	svc := NewImageService(testhelpers.NewMemoryImageStore())
	ctx := context.Background()

	cases := map[string]string{
		"not a data url": "https://example.com/image.png",
		"wrong mime":     "data:text/plain;base64,aGVsbG8=",
		"no payload":     "data:image/png",
		"bad base64":     "data:image/png;base64,!!!not-base64!!!",
		"empty ext":      "data:image/;base64,aGVsbG8=",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SaveBase64(ctx, payload, "recipes")
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
			assert.EqualError(t, err, "Invalid image payload.")
		})
	}
}

func TestDiskImageStore(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskImageStore(dir, "https://example.com/media/")

	url, err := store.Upload(context.Background(), []byte("img"), "avatars/a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/media/avatars/a.png", url)
	assert.FileExists(t, dir+"/avatars/a.png")
}
