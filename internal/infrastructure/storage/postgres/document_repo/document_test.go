package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
)

func TestSRNListQuery(t *testing.T) {
	repo := NewSRNRepo(nil)
	retailer := id.New()

	tests := []struct {
		name      string
		filter    srn.ListFilter
		wantWhere string
		wantPage  string
		wantArgs  []any
	}{
		{
			name:     "everything newest first",
			wantPage: "ORDER BY created_at DESC, number DESC LIMIT 50",
		},
		{
			name: "status and retailer",
			filter: srn.ListFilter{
				Status:     srn.StatusSubmitted,
				RetailerID: &retailer,
				Page:       domain.Page{Limit: 5, Offset: 10},
			},
			wantWhere: "WHERE status = $1 AND retailer_id = $2",
			wantPage:  "ORDER BY created_at DESC, number DESC LIMIT 5 OFFSET 10",
			wantArgs:  []any{string(srn.StatusSubmitted), retailer},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "FROM srns")
			assert.Contains(t, sql, tt.wantWhere)
			assert.Contains(t, sql, tt.wantPage)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				assert.NotContains(t, sql, "WHERE")
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestDocumentColumnsExcludeLines(t *testing.T) {
	repo := NewSRNRepo(nil)

	cols := repo.docs.Columns()
	assert.Contains(t, cols, "number")
	assert.Contains(t, cols, "manufacturer_id")
	assert.NotContains(t, cols, "lines")
	assert.Equal(t, "srn_id", repo.lines.fk)
	assert.Contains(t, repo.lines.Columns(), "approved_units")
}

func TestLockingQueries(t *testing.T) {
	repo := NewDispatchRepo(nil)
	orderID := id.New()

	sql, args, err := forUpdate(repo.docs, orderID).Limit(1).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM dispatch_orders WHERE id = $1 LIMIT 1 FOR UPDATE")
	assert.Equal(t, []any{orderID}, args)
}

func TestCommissionQueries(t *testing.T) {
	repo := NewSaleRepo(nil)
	retailer := id.New()

	t.Run("list", func(t *testing.T) {
		sql, args, err := repo.commissionsQuery(sale.CommissionFilter{
			RetailerID: &retailer,
			Status:     sale.CommissionPending,
		}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "WHERE retailer_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT 50")
		assert.Equal(t, []any{retailer, sale.CommissionPending}, args)
	})

	t.Run("summary for everyone", func(t *testing.T) {
		sql, args, err := repo.summaryQuery(nil).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0) AS paid_amount")
		assert.Contains(t, sql, "FROM commissions GROUP BY retailer_id ORDER BY retailer_id::text")
		assert.Empty(t, args)
	})

	t.Run("summary for one retailer", func(t *testing.T) {
		sql, args, err := repo.summaryQuery(&retailer).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "WHERE retailer_id = $1 GROUP BY retailer_id")
		assert.Equal(t, []any{retailer}, args)
	})
}

func TestSalesQueryFiltersMaterialFirst(t *testing.T) {
	repo := NewSaleRepo(nil)
	material := id.New()
	retailer := id.New()

	sql, args, err := repo.salesQuery(sale.SaleFilter{MaterialID: &material, RetailerID: &retailer}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM sales WHERE material_id = $1 AND retailer_id = $2")
	assert.Equal(t, []any{material, retailer}, args)
}
