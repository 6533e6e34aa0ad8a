package app

import (
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/memory"
)

// MemoryBackend adapts an in-memory store. With useOutbox, events queue in the
// store until an OutboxRelay drains them.
func MemoryBackend(store *memory.Store, loc *time.Location, useOutbox bool) Backend {
	b := Backend{
		TxManager:  store,
		Numerator:  store.NewNumerator(loc),
		Users:      store.NewUserRepo(),
		Materials:  store.NewMaterialRepo(),
		Inventory:  store.NewInventoryRepo(),
		SRNs:       store.NewSRNRepo(),
		Dispatches: store.NewDispatchRepo(),
		GRNs:       store.NewGRNRepo(),
		Invoices:   store.NewInvoiceRepo(),
		Sales:      store.NewSaleRepo(),
		Returns:    store.NewReturnRepo(),
		Inbox:      store.NewNotificationRepo(),
		Audit:      store.NewAuditRepo(),
	}
	if useOutbox {
		b.Outbox = store.NewOutbox()
	}
	return b
}
