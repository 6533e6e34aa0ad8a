package app

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres/auth_repo"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres/document_repo"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres/register_repo"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/numerator"
)

// PostgresOptions tunes the PostgreSQL backend.
type PostgresOptions struct {
	// Location decides where a numbering day starts.
	Location *time.Location
	// UseOutbox records events in sys_outbox for the worker to relay.
	UseOutbox bool
	// AuditCompressThreshold is the payload size above which audit entries are zstd compressed.
	AuditCompressThreshold int
}

// PostgresBackend builds every repository on txm.
func PostgresBackend(txm *postgres.TxManager, opts PostgresOptions) (Backend, error) {
	auditRepo, err := postgres.NewAuditRepo(txm, opts.AuditCompressThreshold)
	if err != nil {
		return Backend{}, fmt.Errorf("audit repository: %w", err)
	}

	b := Backend{
		TxManager: txm,
		Numerator: numerator.NewWithResolver(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		}, numerator.Options{Location: opts.Location}),
		Users:      auth_repo.NewUserRepo(txm),
		Materials:  catalog_repo.NewMaterialRepo(txm),
		Inventory:  register_repo.NewStockRepo(txm),
		SRNs:       document_repo.NewSRNRepo(txm),
		Dispatches: document_repo.NewDispatchRepo(txm),
		GRNs:       document_repo.NewGRNRepo(txm),
		Invoices:   document_repo.NewInvoiceRepo(txm),
		Sales:      document_repo.NewSaleRepo(txm),
		Returns:    document_repo.NewReturnRepo(txm),
		Inbox:      postgres.NewInboxRepo(txm),
		Audit:      auditRepo,
	}
	if opts.UseOutbox {
		b.Outbox = postgres.NewOutboxPublisher(txm)
	}
	return b, nil
}
