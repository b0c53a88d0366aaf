package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrinho/internal/model"
)

var baseTime = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func localItem(id string, priceCents int64, clientUpdated time.Time) model.Item {
	return model.Item{
		ID:                  id,
		CartID:              "cart-1",
		ProductName:         "Café",
		ProductKey:          "cafe",
		QuantityThousandths: 1000,
		QuantityType:        model.QuantityUnit,
		UnitPriceCents:      priceCents,
		TotalCents:          priceCents,
		CreatedAt:           clientUpdated,
		UpdatedAt:           clientUpdated,
		ClientUpdatedAt:     clientUpdated,
	}
}

func serverRow(id string, priceCents int64, clientUpdated time.Time) model.ItemRow {
	return model.ItemRow{
		ID:              id,
		CartID:          "cart-1",
		ProductName:     "Café",
		ProductKey:      "cafe",
		Quantity:        1,
		QuantityType:    model.QuantityUnit,
		UnitPriceCents:  priceCents,
		TotalCents:      priceCents,
		ClientUpdatedAt: model.FormatWireTime(clientUpdated),
	}
}

func TestReconcile_ServerNewerWins(t *testing.T) {
	local := []model.Item{localItem("item-1", 1000, baseTime)}
	server := []model.ItemRow{serverRow("item-1", 1200, baseTime.Add(time.Minute))}

	merged := Reconcile(local, server)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(1200), merged[0].UnitPriceCents)
	assert.True(t, merged[0].ClientUpdatedAt.Equal(baseTime.Add(time.Minute)))
}

func TestReconcile_LocalNewerKept(t *testing.T) {
	local := []model.Item{localItem("item-1", 1000, baseTime.Add(time.Minute))}
	server := []model.ItemRow{serverRow("item-1", 1200, baseTime)}

	merged := Reconcile(local, server)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(1000), merged[0].UnitPriceCents)
}

func TestReconcile_TieKeepsLocal(t *testing.T) {
	local := []model.Item{localItem("item-1", 1000, baseTime)}
	server := []model.ItemRow{serverRow("item-1", 1200, baseTime)}

	merged := Reconcile(local, server)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(1000), merged[0].UnitPriceCents)
}

func TestReconcile_TwoWayUnion(t *testing.T) {
	local := []model.Item{localItem("item-local", 1000, baseTime)}
	server := []model.ItemRow{serverRow("item-server", 500, baseTime)}

	merged := Reconcile(local, server)

	require.Len(t, merged, 2)
	assert.Equal(t, "item-local", merged[0].ID)
	assert.Equal(t, "item-server", merged[1].ID)
}

func TestReconcile_UnparseableServerTimestampKeepsLocal(t *testing.T) {
	local := []model.Item{localItem("item-1", 1000, baseTime)}
	bad := serverRow("item-1", 1200, baseTime)
	bad.ClientUpdatedAt = "not-a-time"

	merged := Reconcile(local, []model.ItemRow{bad})

	require.Len(t, merged, 1)
	assert.Equal(t, int64(1000), merged[0].UnitPriceCents)
}

func TestReconcile_EmptySides(t *testing.T) {
	assert.Empty(t, Reconcile(nil, nil))

	merged := Reconcile(nil, []model.ItemRow{serverRow("item-1", 500, baseTime)})
	require.Len(t, merged, 1)
	assert.Equal(t, "item-1", merged[0].ID)
}
