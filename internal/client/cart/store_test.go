package cart

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gummies = models.Product{ID: "p-gummies", Name: "Mango Gummies", PriceCents: 1800}
	preroll = models.Product{ID: "p-preroll", Name: "Blue Dream Pre-roll", PriceCents: 1200}
)

func TestAdd_MergesSameProduct(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(gummies, 2))
	require.NoError(t, s.Add(gummies, 3))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, int64(5*1800), s.TotalPrice())
	assert.Equal(t, 5, s.TotalItemCount())
}

func TestAdd_KeepsFirstPriceSnapshot(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(gummies, 1))

	repriced := gummies
	repriced.PriceCents = 2500
	require.NoError(t, s.Add(repriced, 1))

	l, ok := s.Line(gummies.ID)
	require.True(t, ok)
	assert.Equal(t, int64(1800), l.UnitPriceCents)
}

func TestAdd_RejectsNonPositive(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	for _, q := range []int{0, -1} {
		err := s.Add(gummies, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, s.Lines())
	assert.Zero(t, calls)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(gummies, 1))
	require.NoError(t, s.Add(preroll, 2))

	s.Remove(gummies.ID)
	s.Remove("absent")

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, preroll.ID, lines[0].ProductID)
}

func TestUpdateQuantity(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(gummies, 1))
	require.NoError(t, s.Add(preroll, 1))

	s.UpdateQuantity(gummies.ID, 4)
	l, _ := s.Line(gummies.ID)
	assert.Equal(t, 4, l.Quantity)

	s.UpdateQuantity(gummies.ID, 0)
	_, ok := s.Line(gummies.ID)
	assert.False(t, ok)

	s.UpdateQuantity(preroll.ID, -3)
	assert.Empty(t, s.Lines())

	s.UpdateQuantity("absent", 2)
	assert.Empty(t, s.Lines())
}

func TestClear(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(gummies, 3))
	require.NoError(t, s.Add(preroll, 1))

	s.Clear()
	assert.Empty(t, s.Lines())
	assert.Zero(t, s.TotalPrice())
	assert.Zero(t, s.TotalItemCount())

	s.Clear()
	assert.Zero(t, s.TotalPrice())
}

func TestNoDuplicateLines_RandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := make([]models.Product, 6)
	for i := range products {
		products[i] = models.Product{ID: fmt.Sprintf("p%d", i), PriceCents: int64(100 * (i + 1))}
	}

	s := NewStore()
	for step := 0; step < 2000; step++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			_ = s.Add(p, rng.Intn(5)-1)
		case 1:
			s.Remove(p.ID)
		case 2:
			s.UpdateQuantity(p.ID, rng.Intn(6)-2)
		}

		seen := map[string]bool{}
		for _, l := range s.Lines() {
			require.False(t, seen[l.ProductID], "duplicate line for %s at step %d", l.ProductID, step)
			require.Positive(t, l.Quantity)
			seen[l.ProductID] = true
		}
	}
}

func TestSubscribe_NotifiesEveryMutation(t *testing.T) {
	s := NewStore()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.Add(gummies, 2))
	s.UpdateQuantity(gummies.ID, 3)
	s.Remove(gummies.ID)
	s.Clear()

	require.Len(t, got, 4)
	assert.Equal(t, 2, got[0].ItemCount)
	assert.Equal(t, int64(3600), got[0].TotalCents)
	assert.Equal(t, 3, got[1].ItemCount)
	assert.Empty(t, got[2].Lines)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Add(gummies, 1))
	assert.Len(t, got, 4)
}

func TestSubscribe_OrderAndReentrancy(t *testing.T) {
	s := NewStore()
	var order []string
	s.Subscribe(func(Snapshot) { order = append(order, "first") })
	s.Subscribe(func(snap Snapshot) {
		order = append(order, "second")
		assert.Equal(t, snap.TotalCents, s.TotalPrice())
	})

	require.NoError(t, s.Add(preroll, 1))
	assert.Equal(t, []string{"first", "second"}, order)
}
