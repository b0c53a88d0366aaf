package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrinho/internal/model"
	"carrinho/internal/outbox"
	"carrinho/internal/store"
	"carrinho/internal/testutil"
)

var day = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	store   *store.Store
	queue   *outbox.Queue
	clock   *testutil.Clock
	notices int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{store: s, queue: outbox.New(s), clock: testutil.NewClock(day)}
	ids := testutil.NewIDs("id")
	f.svc = New(s, f.queue,
		WithClock(f.clock.Now),
		WithIDs(ids.New),
		WithNotify(func() { f.notices++ }),
	)
	return f
}

func (f *fixture) ops(t *testing.T) []outbox.Entry {
	t.Helper()
	entries, err := f.queue.List(context.Background())
	require.NoError(t, err)
	return entries
}

// assertAggregates checks the invariant every mutation must preserve:
// the stored cart totals always match its item list.
func (f *fixture) assertAggregates(t *testing.T, cartID string) {
	t.Helper()
	cart, err := f.store.CartByID(context.Background(), cartID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	items, err := f.store.ItemsByCart(context.Background(), cartID)
	require.NoError(t, err)

	total, count := model.Aggregate(items)
	assert.Equal(t, total, cart.TotalCents, "cart total out of sync with items")
	assert.Equal(t, count, cart.ItemsCount, "cart count out of sync with items")
}

func TestOpenDay_CreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, model.CartOpen, cart.Status)
	assert.Equal(t, "2026-08-28", cart.Date)

	again, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	ops := f.ops(t)
	require.Len(t, ops, 1)
	assert.Equal(t, model.OpUpsertCart, ops[0].Op.Type)
	assert.Equal(t, 1, f.notices)
}

func TestAddItem_ParsesAndAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, cart.ID, ItemInput{
		ProductName:  "Café Torrado",
		Brand:        "Pilão",
		Category:     "mercearia",
		Price:        "12,90",
		Quantity:     "1,5",
		QuantityType: model.QuantityWeight,
	})
	require.NoError(t, err)

	assert.Equal(t, "cafe-torrado-pilao", item.ProductKey)
	assert.Equal(t, int64(1290), item.UnitPriceCents)
	assert.Equal(t, int64(1500), item.QuantityThousandths)
	assert.Equal(t, int64(1935), item.TotalCents)

	f.assertAggregates(t, cart.ID)

	ops := f.ops(t)
	require.Len(t, ops, 2)
	require.Equal(t, model.OpUpsertItem, ops[1].Op.Type)
	row := model.ItemRow(ops[1].Op.Payload.(model.UpsertItem))
	assert.Equal(t, item.ID, row.ID)
	assert.Equal(t, "2026-08-28", row.Date)
	assert.Equal(t, 1.5, row.Quantity)
}

func TestAddItem_PrependsNewest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Arroz", Price: "20,00"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Feijão", Price: "8,00"})
	require.NoError(t, err)

	items, err := f.store.ItemsByCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Feijão", items[0].ProductName)
	assert.Equal(t, "Arroz", items[1].ProductName)
}

func TestAddItem_DefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "   "})
	require.ErrorIs(t, err, ErrEmptyProductName)

	// Blank quantity means one unit.
	item, err := f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Leite", Price: "4,79"})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), item.QuantityThousandths)
	assert.Equal(t, model.QuantityUnit, item.QuantityType)
	assert.Equal(t, int64(479), item.TotalCents)
}

func TestAddItem_RejectsClosedCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	_, err = f.svc.CloseCart(ctx, cart.ID)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Café", Price: "12,90"})
	require.ErrorIs(t, err, ErrCartClosed)
}

func TestUpdateItem_RecomputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Café", Price: "12,90"})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	updated, err := f.svc.UpdateItem(ctx, cart.ID, item.ID, ItemInput{
		ProductName: "Café",
		Price:       "10,00",
		Quantity:    "2",
	})
	require.NoError(t, err)

	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, int64(2000), updated.TotalCents)
	assert.True(t, updated.ClientUpdatedAt.After(item.ClientUpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(item.CreatedAt))
	f.assertAggregates(t, cart.ID)
}

func TestDeleteItem_ReturnsRemovedForUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Café", Price: "12,90"})
	require.NoError(t, err)

	removed, err := f.svc.DeleteItem(ctx, cart.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, removed.ID)
	f.assertAggregates(t, cart.ID)

	ops := f.ops(t)
	last := ops[len(ops)-1].Op
	require.Equal(t, model.OpDeleteItem, last.Type)
	assert.Equal(t, item.ID, last.Payload.(model.DeleteItem).ID)

	_, err = f.svc.DeleteItem(ctx, cart.ID, item.ID)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDuplicateItem_FreshIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, cart.ID, ItemInput{ProductName: "Café", Price: "12,90"})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	copied, err := f.svc.DuplicateItem(ctx, cart.ID, item.ID)
	require.NoError(t, err)

	assert.NotEqual(t, item.ID, copied.ID)
	assert.Equal(t, item.ProductKey, copied.ProductKey)
	assert.Equal(t, item.TotalCents, copied.TotalCents)
	assert.True(t, copied.ClientUpdatedAt.After(item.ClientUpdatedAt))
	f.assertAggregates(t, cart.ID)
}

func TestCloseReopen_OpsAndTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)

	closed, err := f.svc.CloseCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CartClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// Closing twice is a no-op, not a second op.
	_, err = f.svc.CloseCart(ctx, cart.ID)
	require.NoError(t, err)

	reopened, err := f.svc.ReopenCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CartOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)

	ops := f.ops(t)
	require.Len(t, ops, 3)
	assert.Equal(t, model.OpCloseCart, ops[1].Op.Type)
	assert.Equal(t, model.OpReopenCart, ops[2].Op.Type)

	patch := model.CartPatch(ops[1].Op.Payload.(model.CloseCart))
	require.NotNil(t, patch.ClosedAt)
	reopen := model.CartPatch(ops[2].Op.Payload.(model.ReopenCart))
	assert.Nil(t, reopen.ClosedAt)
}

func TestHistory_NewestFirstWithMonthFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, date := range []string{"2026-07-30", "2026-08-27", "2026-08-28"} {
		_, err := f.svc.OpenDay(ctx, date)
		require.NoError(t, err)
	}

	all, err := f.svc.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-08-28", all[0].Date)
	assert.Equal(t, "2026-07-30", all[2].Date)

	august, err := f.svc.History(ctx, "2026-08")
	require.NoError(t, err)
	require.Len(t, august, 2)
	assert.Equal(t, "2026-08-28", august[0].Date)
}

func TestInsights_ClosedCartsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.OpenDay(ctx, "2026-08-27")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, first.ID, ItemInput{ProductName: "Café", Brand: "Pilão", Category: "mercearia", Price: "12,90"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, first.ID, ItemInput{ProductName: "Picanha", Category: "açougue", Price: "60,00"})
	require.NoError(t, err)
	_, err = f.svc.CloseCart(ctx, first.ID)
	require.NoError(t, err)

	second, err := f.svc.OpenDay(ctx, "2026-08-28")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, second.ID, ItemInput{ProductName: "Café", Brand: "Pilão", Category: "mercearia", Price: "13,50"})
	require.NoError(t, err)
	_, err = f.svc.CloseCart(ctx, second.ID)
	require.NoError(t, err)

	// Open cart spending must not count.
	open, err := f.svc.OpenDay(ctx, "2026-08-29")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, open.ID, ItemInput{ProductName: "Chocolate", Price: "99,00"})
	require.NoError(t, err)

	ins, err := f.svc.Insights(ctx, "2026-08")
	require.NoError(t, err)

	assert.Equal(t, 2, ins.CartCount)
	assert.Equal(t, 3, ins.ItemCount)
	assert.Equal(t, int64(1290+6000+1350), ins.TotalCents)

	require.NotEmpty(t, ins.TopByValue)
	assert.Equal(t, "picanha", ins.TopByValue[0].ProductKey)

	require.NotEmpty(t, ins.TopByQuantity)
	assert.Equal(t, "cafe-pilao", ins.TopByQuantity[0].ProductKey)
	assert.Equal(t, 2, ins.TopByQuantity[0].Purchases)

	require.Len(t, ins.TopCategories, 2)
	assert.Equal(t, "açougue", ins.TopCategories[0].Category)

	series := ins.PriceSeries["cafe-pilao"]
	require.Len(t, series, 2)
	assert.Equal(t, int64(1290), series[0].UnitPriceCents)
	assert.Equal(t, int64(1350), series[1].UnitPriceCents)
}
