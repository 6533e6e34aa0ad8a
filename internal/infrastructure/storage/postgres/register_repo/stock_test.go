package register_repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
)

func TestTransactionsQuery(t *testing.T) {
	repo := NewStockRepo(nil)
	material := id.New()
	ref := id.New()

	tests := []struct {
		name     string
		filter   inventory.TransactionFilter
		wantTail string
		wantArgs []any
	}{
		{
			name:     "defaults",
			wantTail: "FROM inventory_transactions ORDER BY seq LIMIT 50",
		},
		{
			name: "material and location",
			filter: inventory.TransactionFilter{
				MaterialID:   &material,
				LocationType: inventory.LocationRetailer,
				Limit:        10,
				Offset:       20,
			},
			wantTail: "FROM inventory_transactions WHERE material_id = $1 AND location_type = $2 ORDER BY seq LIMIT 10 OFFSET 20",
			wantArgs: []any{material, inventory.LocationRetailer},
		},
		{
			name:     "reference",
			filter:   inventory.TransactionFilter{ReferenceID: &ref},
			wantTail: "FROM inventory_transactions WHERE reference_id = $1 ORDER BY seq LIMIT 50",
			wantArgs: []any{ref},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.transactionsQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(sql, tt.wantTail), "got %s", sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestLedgerColumnsSkipSeq(t *testing.T) {
	repo := NewStockRepo(nil)

	assert.NotContains(t, repo.transactions.Columns(), "seq")
	assert.Contains(t, repo.transactions.Columns(), "reference_number")
	assert.Equal(t, []string{
		"material_id", "manufacturer_id", "full_packets", "blocked_packets",
		"loose_units", "blocked_loose_units", "updated_at",
	}, repo.manufacturer.Columns())
}
