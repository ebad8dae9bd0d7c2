package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample() *Item {
	return &Item{
		ID:           1,
		OwnerID:      1,
		Title:        "Testituote",
		Desc:         "Helvetin hyvä tuote",
		Category:     "Ajoneuvot",
		Location:     "Oulu",
		Images:       []string{},
		Price:        99999.99,
		Date:         "2021-02-11",
		DeliveryType: "pickup",
		Name:         "Ossi",
		Tel:          "0129091249",
	}
}

func TestApplyPartial_MergesOnlyProvidedKeys(t *testing.T) {
	it := sample()
	applied := it.ApplyPartial(map[string]any{"title": "X"})
	require.Equal(t, 1, applied)
	require.Equal(t, "X", it.Title)
	require.Equal(t, "Helvetin hyvä tuote", it.Desc)
	require.Equal(t, "Oulu", it.Location)
	require.Equal(t, 99999.99, it.Price)
}

func TestApplyPartial_ImmutableAndUnknownKeysSkipped(t *testing.T) {
	it := sample()
	applied := it.ApplyPartial(map[string]any{
		"id":      float64(99),
		"ownerId": float64(42),
		"color":   "red",
	})
	require.Equal(t, 0, applied)
	require.EqualValues(t, 1, it.ID)
	require.EqualValues(t, 1, it.OwnerID)
}

func TestApplyPartial_TypedFields(t *testing.T) {
	it := sample()
	applied := it.ApplyPartial(map[string]any{
		"price":  12.5,
		"images": []any{"/uploads/a.jpg", "/uploads/b.jpg"},
	})
	require.Equal(t, 2, applied)
	require.Equal(t, 12.5, it.Price)
	require.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, it.Images)

	// wrong types are not applied
	require.Equal(t, 0, it.ApplyPartial(map[string]any{"price": "cheap", "title": 3}))
	require.Equal(t, 12.5, it.Price)
}

func TestMatches_CaseInsensitiveSubstring(t *testing.T) {
	it := sample()
	require.True(t, it.Matches("location", "oulu"))
	require.True(t, it.Matches("location", "OUL"))
	require.True(t, it.Matches("category", "ajo"))
	require.False(t, it.Matches("location", "helsinki"))
	require.False(t, it.Matches("color", "red"))
}
