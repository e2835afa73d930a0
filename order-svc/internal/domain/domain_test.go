package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	latte   = "a3c4d5e6-1111-4a2b-9c3d-000000000001"
	bagel   = "a3c4d5e6-1111-4a2b-9c3d-000000000002"
	large   = "b0000000-0000-4000-8000-000000000001"
	milkGrp = "c0000000-0000-4000-8000-000000000001"
	oat     = "d0000000-0000-4000-8000-000000000001"
	soy     = "d0000000-0000-4000-8000-000000000002"
	syrup   = "d0000000-0000-4000-8000-000000000003"
)

func TestStatusProgression(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "placed to preparing", from: StatusPlaced, to: StatusPreparing},
		{name: "preparing to ready", from: StatusPreparing, to: StatusReady},
		{name: "ready to completed", from: StatusReady, to: StatusCompleted},
		{name: "skip a step", from: StatusPlaced, to: StatusReady, wantErr: true},
		{name: "regress", from: StatusReady, to: StatusPreparing, wantErr: true},
		{name: "same status", from: StatusPreparing, to: StatusPreparing, wantErr: true},
		{name: "past completed", from: StatusCompleted, to: StatusPlaced, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := Transition(testCase.from, testCase.to)
			if testCase.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, ok := StatusCompleted.Next()
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("ready")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)

	_, err = ParseStatus("cancelled")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCartMergesSameSelection(t *testing.T) {
	c := NewCart("dev", "rest")

	first, err := c.Add(CartLine{ItemID: latte, AddonOptionIDs: []string{soy, oat}, Quantity: 1})
	require.NoError(t, err)
	second, err := c.Add(CartLine{ItemID: latte, AddonOptionIDs: []string{oat, soy, oat}, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, []string{oat, soy}, c.Lines[0].AddonOptionIDs)

	_, err = c.Add(CartLine{ItemID: latte, VariantID: large, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, c.Lines, 2)
}

func TestCartQuantityLimits(t *testing.T) {
	c := NewCart("dev", "rest")

	_, err := c.Add(CartLine{ItemID: latte, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	line, err := c.Add(CartLine{ItemID: latte, Quantity: 98})
	require.NoError(t, err)
	_, err = c.Add(CartLine{ItemID: latte, Quantity: 2})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	require.NoError(t, c.SetQuantity(line.Key, 5))
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.ErrorIs(t, c.SetQuantity("nope", 1), ErrLineNotFound)

	require.NoError(t, c.Remove(line.Key))
	assert.True(t, c.IsEmpty())
}

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Items[latte] = CatalogItem{
		ID: latte, Name: "Latte", Price: 3.5, IsAvailable: true, IsVisible: true,
		Variants: map[string]CatalogVariant{large: {ID: large, Name: "Large", Price: 4.25}},
		GroupIDs: []string{milkGrp},
	}
	c.Items[bagel] = CatalogItem{ID: bagel, Name: "Bagel", Price: 2, IsAvailable: false, IsVisible: true}
	c.Groups[milkGrp] = CatalogGroup{ID: milkGrp, Name: "Milk", MinSelect: 1, MaxSelect: 1}
	c.Options[oat] = CatalogOption{ID: oat, GroupID: milkGrp, Name: "Oat", Price: 0.6}
	c.Options[soy] = CatalogOption{ID: soy, GroupID: milkGrp, Name: "Soy", Price: 0.5}
	c.Options[syrup] = CatalogOption{ID: syrup, GroupID: "other", Name: "Syrup", Price: 1}
	return c
}

func TestCatalogPrice(t *testing.T) {
	cat := testCatalog()

	q, err := cat.Price([]CartLine{
		{ItemID: latte, VariantID: large, AddonOptionIDs: []string{oat}, Quantity: 3},
		{ItemID: latte, AddonOptionIDs: []string{soy}, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)

	assert.Equal(t, 4.85, q.Lines[0].UnitPrice)
	assert.Equal(t, 14.55, q.Lines[0].LineTotal)
	assert.Equal(t, "Large", q.Lines[0].VariantName)
	assert.Equal(t, []string{"Oat"}, q.Lines[0].AddonNames)
	assert.Equal(t, 4.0, q.Lines[1].UnitPrice)
	assert.Equal(t, 18.55, q.Total)

	items := q.OrderItems()
	assert.Equal(t, q.Total, Total(items))
}

func TestCatalogPriceRejects(t *testing.T) {
	tests := []struct {
		name    string
		line    CartLine
		wantErr error
	}{
		{name: "unknown item", line: CartLine{ItemID: "x", Quantity: 1}, wantErr: ErrUnknownItem},
		{name: "unavailable", line: CartLine{ItemID: bagel, Quantity: 1}, wantErr: ErrItemUnavailable},
		{name: "foreign variant", line: CartLine{ItemID: latte, VariantID: "v", AddonOptionIDs: []string{oat}, Quantity: 1}, wantErr: ErrUnknownVariant},
		{name: "option of unattached group", line: CartLine{ItemID: latte, AddonOptionIDs: []string{oat, syrup}, Quantity: 1}, wantErr: ErrUnknownAddon},
		{name: "required group missing", line: CartLine{ItemID: latte, Quantity: 1}, wantErr: ErrAddonSelection},
		{name: "too many in group", line: CartLine{ItemID: latte, AddonOptionIDs: []string{oat, soy}, Quantity: 1}, wantErr: ErrAddonSelection},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := testCatalog().Price([]CartLine{testCase.line})
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestGroupByTable(t *testing.T) {
	seven, two := 7, 2
	orders := []Order{
		{ID: "a", TableNumber: &seven, Status: StatusPlaced, TotalAmount: 10.1},
		{ID: "b", Status: StatusCompleted, TotalAmount: 4},
		{ID: "c", TableNumber: &two, Status: StatusCompleted, TotalAmount: 3},
		{ID: "d", TableNumber: &seven, Status: StatusCompleted, TotalAmount: 0.2},
	}

	groups := GroupByTable(orders)
	require.Len(t, groups, 3)

	assert.Equal(t, 2, *groups[0].TableNumber)
	assert.Equal(t, 0, groups[0].OpenCount)

	assert.Equal(t, 7, *groups[1].TableNumber)
	assert.Equal(t, 2, groups[1].OrderCount)
	assert.Equal(t, 1, groups[1].OpenCount)
	assert.Equal(t, 10.3, groups[1].Total)
	assert.Equal(t, "a", groups[1].Orders[0].ID)

	assert.Nil(t, groups[2].TableNumber)
	assert.Equal(t, "b", groups[2].Orders[0].ID)
}
