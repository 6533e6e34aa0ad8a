// Package app wires storage backends into the business services.
package app

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/audit"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

// Backend is one storage implementation of every repository.
type Backend struct {
	TxManager  tx.Manager
	Numerator  numerator.Generator
	Users      auth.UserRepository
	Materials  material.Repository
	Inventory  inventory.Repository
	SRNs       srn.Repository
	Dispatches dispatch.Repository
	GRNs       grn.Repository
	Invoices   invoice.Repository
	Sales      sale.Repository
	Returns    returns.Repository
	Inbox      notification.Store
	Audit      audit.Store

	// Outbox records events for a relay. When nil, events are delivered
	// synchronously inside the use case transaction.
	Outbox notification.Publisher
}

// Options tunes the services.
type Options struct {
	JWT   auth.JWTConfig
	Auth  auth.ServiceConfig
	Money money.Policy
	// Sinks are delivered to in addition to the inbox and the audit trail.
	Sinks []notification.Sink
}

// DefaultOptions returns production defaults signing tokens with secret.
func DefaultOptions(secret string) Options {
	return Options{
		JWT:   auth.DefaultJWTConfig(secret),
		Auth:  auth.DefaultServiceConfig(),
		Money: money.DefaultPolicy(),
	}
}

// Services is the assembled application.
type Services struct {
	JWT           *auth.JWTService
	Auth          *auth.Service
	Materials     *material.Service
	Manufacturers *inventory.ManufacturerLedger
	Retailers     *inventory.RetailerLedger
	Inventory     *inventory.Service
	SRN           *srn.Service
	Dispatch      *dispatch.Service
	GRN           *grn.Service
	Invoice       *invoice.Service
	Sales         *sale.Service
	Returns       *returns.Service
	Inbox         *notification.Service
	Audit         *audit.Service

	// Dispatcher delivers events to the sinks. Outbox relays feed it.
	Dispatcher *notification.Dispatcher
	Publisher  notification.Publisher
}

// NewServices builds every service on top of b.
func NewServices(b Backend, opts Options) *Services {
	engine := money.NewEngine(opts.Money)
	jwtService := auth.NewJWTService(opts.JWT)
	authService := auth.NewService(b.Users, b.TxManager, jwtService, opts.Auth)

	sinks := append([]notification.Sink{
		notification.NewInboxSink(b.Inbox),
		audit.NewSink(b.Audit),
	}, opts.Sinks...)
	dispatcher := notification.NewDispatcher(authService, sinks...)

	var publisher notification.Publisher = notification.NewDirectPublisher(dispatcher)
	if b.Outbox != nil {
		publisher = b.Outbox
	}

	manufacturers := inventory.NewManufacturerLedger(b.Inventory, b.TxManager)
	materials := material.NewService(b.Materials, manufacturers, b.Numerator, authService, publisher, b.TxManager)
	retailers := inventory.NewRetailerLedger(b.Inventory, materials, b.TxManager)

	return &Services{
		JWT:           jwtService,
		Auth:          authService,
		Materials:     materials,
		Manufacturers: manufacturers,
		Retailers:     retailers,
		Inventory:     inventory.NewService(b.Inventory),
		SRN:           srn.NewService(b.SRNs, materials, manufacturers, authService, b.Numerator, publisher, b.TxManager),
		Dispatch: dispatch.NewService(dispatch.Deps{
			Repo:          b.Dispatches,
			GRNs:          b.GRNs,
			SRNs:          b.SRNs,
			Materials:     materials,
			Manufacturers: manufacturers,
			Retailers:     retailers,
			Money:         engine,
			Numerator:     b.Numerator,
			Publisher:     publisher,
			TxManager:     b.TxManager,
		}),
		GRN:     grn.NewService(b.GRNs, b.TxManager),
		Invoice: invoice.NewService(b.Invoices, b.GRNs, b.Dispatches, engine, b.Numerator, publisher, b.TxManager),
		Sales:   sale.NewService(b.Sales, materials, retailers, engine, b.Numerator, b.TxManager),
		Returns: returns.NewService(returns.Deps{
			Repo:      b.Returns,
			GRNs:      b.GRNs,
			Materials: materials,
			Ledger:    manufacturers,
			Directory: authService,
			Numerator: b.Numerator,
			Publisher: publisher,
			TxManager: b.TxManager,
		}),
		Inbox:      notification.NewService(b.Inbox),
		Audit:      audit.NewService(b.Audit),
		Dispatcher: dispatcher,
		Publisher:  publisher,
	}
}
