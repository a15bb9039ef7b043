package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDatasets(t *testing.T) {
	d, err := DefaultDatasets()
	require.NoError(t, err)

	assert.Len(t, d.Catalog, 25)
	assert.Equal(t, "p-001", d.Catalog[0].ID)
	assert.Equal(t, "Produce", d.Category("apples"))
	assert.Equal(t, []string{"Almond milk", "Oat milk", "Soy milk"}, d.Alternatives("milk"))
	for month := 1; month <= 12; month++ {
		assert.NotEmpty(t, d.SeasonalFor(month), "month %d", month)
	}
}

func TestDefaultDatasetFile(t *testing.T) {
	for _, name := range DatasetFiles {
		data, err := DefaultDatasetFile(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	_, err := DefaultDatasetFile("missing.json")
	assert.Error(t, err)
}

func TestDecodeDatasets_Errors(t *testing.T) {
	_, err := decodeDatasets(func(string) ([]byte, error) {
		return nil, errors.New("gone")
	})
	assert.ErrorContains(t, err, "failed to read products.json")

	_, err = decodeDatasets(func(name string) ([]byte, error) {
		if name == SeasonalFile {
			return []byte("{"), nil
		}
		return DefaultDatasetFile(name)
	})
	assert.ErrorContains(t, err, "failed to decode seasonal.json")
}

func TestDeriveSigningKey(t *testing.T) {
	a := DeriveSigningKey("secret")
	assert.Len(t, a, 32)
	assert.Equal(t, a, DeriveSigningKey("secret"))
	assert.NotEqual(t, a, DeriveSigningKey("other"))
}
