package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
)

type mockDocument struct {
	entity.Document
	RetailerID id.ID       `db:"retailer_id"`
	Subtotal   money.Money `db:"subtotal"`
	Lines      []string    `db:"-"`
}

func TestExtractDBColumnsFlattensEmbeddedStructs(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	assert.Equal(t, []string{"id", "created_at", "updated_at", "number", "retailer_id", "subtotal"}, cols)
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	doc := mockDocument{
		Document:   entity.NewDocument("SRN-20260101-000001", now),
		RetailerID: id.New(),
		Subtotal:   money.MustParse("12.50"),
		Lines:      []string{"ignored"},
	}

	m := StructToMap(&doc)

	assert.Len(t, m, 6)
	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "SRN-20260101-000001", m["number"])
	assert.Equal(t, doc.RetailerID, m["retailer_id"])
	assert.True(t, doc.Subtotal.Equal(m["subtotal"].(money.Money)))
	assert.NotContains(t, m, "Lines")
}

func TestStructToMapRejectsNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
