package main

import (
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("img", "Lembas_Bread.png"), imagePathFor("img", "Lembas Bread"))
}

func TestLoadDishes(t *testing.T) {
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "img")
	require.NoError(t, os.Mkdir(imgDir, 0o755))

	png := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "Lembas_Bread.png"), png, 0o644))

	dishesPath := filepath.Join(dir, "dishes.json")
	require.NoError(t, os.WriteFile(dishesPath, []byte(`[
		{"name": "Lembas Bread", "description": "Elven waybread", "price": 4.5, "rating": 5},
		{"name": "Po-tay-toes", "description": "Boiled, mashed, stuck in a stew", "price": 2, "rating": null}
	]`), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dishes, err := loadDishes(dishesPath, imgDir, logger)
	require.NoError(t, err)
	require.Len(t, dishes, 2)

	assert.Equal(t, base64.StdEncoding.EncodeToString(png), dishes[0].Image)
	require.NotNil(t, dishes[0].Rating)
	assert.Equal(t, 5.0, *dishes[0].Rating)

	assert.Empty(t, dishes[1].Image, "missing images are skipped")
	assert.Nil(t, dishes[1].Rating)
}

func TestLoadDishes_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dishes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := loadDishes(path, t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
