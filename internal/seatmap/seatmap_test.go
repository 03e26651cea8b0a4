package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shop1111/flight-booking/internal/model"
)

func TestGenerate(t *testing.T) {
	t.Run("economy only single row", func(t *testing.T) {
		seats := Generate(0, 0, 6, model.CabinEconomy)
		assert.Equal(t, []string{"1A", "1B", "1C", "1D", "1E", "1F"}, seats)
	})

	t.Run("rows packed first business economy", func(t *testing.T) {
		// first: 3 seats -> 2 rows (1A 1B 2A), business: 5 -> 2 rows starting at 3
		first := Generate(3, 5, 8, model.CabinFirst)
		business := Generate(3, 5, 8, model.CabinBusiness)
		economy := Generate(3, 5, 8, model.CabinEconomy)

		assert.Equal(t, []string{"1A", "1B", "2A"}, first)
		assert.Equal(t, []string{"3A", "3B", "3C", "3D", "4A"}, business)
		assert.Equal(t, []string{"5A", "5B", "5C", "5D", "5E", "5F", "6A", "6B"}, economy)
	})

	t.Run("empty cabin consumes no rows", func(t *testing.T) {
		assert.Empty(t, Generate(0, 4, 6, model.CabinFirst))
		assert.Equal(t, []string{"1A", "1B", "1C", "1D"}, Generate(0, 4, 6, model.CabinBusiness))
		assert.Equal(t, "2A", Generate(0, 4, 6, model.CabinEconomy)[0])
	})

	t.Run("negative count is empty", func(t *testing.T) {
		assert.Empty(t, Generate(-2, 0, 0, model.CabinFirst))
	})

	t.Run("unknown class is empty", func(t *testing.T) {
		assert.Empty(t, Generate(2, 4, 6, model.CabinClass("cargo")))
	})
}

func TestGenerateLengthAndStability(t *testing.T) {
	layouts := []Layout{
		{First: 0, Business: 0, Economy: 1},
		{First: 8, Business: 24, Economy: 150},
		{First: 7, Business: 13, Economy: 133},
		{First: 1, Business: 1, Economy: 1},
		{First: 12, Business: 0, Economy: 31},
	}
	for _, l := range layouts {
		for _, c := range model.CabinClasses {
			a := Generate(l.First, l.Business, l.Economy, c)
			b := Generate(l.First, l.Business, l.Economy, c)
			want := l.count(c)
			if want < 0 {
				want = 0
			}
			require.Len(t, a, want, "layout %+v class %s", l, c)
			assert.Equal(t, a, b)
		}
	}
}

func TestSeatsAreUniqueAcrossCabins(t *testing.T) {
	l := Layout{First: 7, Business: 13, Economy: 133}
	seen := map[string]model.CabinClass{}
	for _, c := range model.CabinClasses {
		for _, s := range l.Seats(c) {
			prev, dup := seen[s]
			require.False(t, dup, "seat %s in %s and %s", s, prev, c)
			seen[s] = c
		}
	}
	assert.Len(t, seen, 7+13+133)
}

func TestStartRow(t *testing.T) {
	l := Layout{First: 4, Business: 9, Economy: 60}
	assert.Equal(t, 1, l.StartRow(model.CabinFirst))
	assert.Equal(t, 3, l.StartRow(model.CabinBusiness))
	assert.Equal(t, 6, l.StartRow(model.CabinEconomy))
}

func TestClassOf(t *testing.T) {
	l := Layout{First: 2, Business: 4, Economy: 6}
	c, ok := l.ClassOf("2C")
	require.True(t, ok)
	assert.Equal(t, model.CabinBusiness, c)

	c, ok = l.ClassOf("3F")
	require.True(t, ok)
	assert.Equal(t, model.CabinEconomy, c)

	_, ok = l.ClassOf("1C")
	assert.False(t, ok)
}

func TestAvailable(t *testing.T) {
	all := []string{"1A", "1B", "1C", "1D"}
	assert.Equal(t, []string{"1A", "1D"}, Available(all, []string{"1B", "1C", "9Z"}))
	assert.Equal(t, all, Available(all, nil))
	assert.Empty(t, Available(all, all))
}
