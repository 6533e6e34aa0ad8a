// Package apptest builds a fully wired application on the in-memory backend
// together with fixtures for workflow tests.
package apptest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/memory"
)

// Password is the password of every fixture user.
const Password = "correct-horse"

// Env is a wired application with an admin already bootstrapped.
type Env struct {
	*app.Services

	Store   *memory.Store
	Backend app.Backend
	Ctx     context.Context
	Admin   security.Actor

	seq atomic.Int64
}

// New builds an Env with synchronous notification delivery.
func New(t testing.TB) *Env {
	return build(t, false)
}

// NewWithOutbox builds an Env whose events queue in the store's outbox.
func NewWithOutbox(t testing.TB) *Env {
	return build(t, true)
}

func build(t testing.TB, outbox bool) *Env {
	t.Helper()

	store := memory.New()
	backend := app.MemoryBackend(store, time.UTC, outbox)
	opts := app.DefaultOptions("test-secret")
	opts.Auth.BcryptCost = bcrypt.MinCost

	env := &Env{
		Services: app.NewServices(backend, opts),
		Store:    store,
		Backend:  backend,
		Ctx:      context.Background(),
	}

	admin, err := env.Auth.Bootstrap(env.Ctx, "admin@example.com", "Admin", Password)
	require.NoError(t, err)
	env.Admin = admin.Actor()
	return env
}

func (e *Env) next() int64 {
	return e.seq.Add(1)
}

// User creates an active account with role.
func (e *Env) User(t testing.TB, role security.Role) *auth.User {
	t.Helper()
	n := e.next()
	u, err := e.Auth.CreateUser(e.Ctx, e.Admin, auth.CreateUserRequest{
		Email:    fmt.Sprintf("%s-%d@example.com", role, n),
		Name:     fmt.Sprintf("%s %d", role, n),
		Role:     role,
		Password: Password,
	})
	require.NoError(t, err)
	return u
}

// Manufacturer creates a manufacturer and returns its actor.
func (e *Env) Manufacturer(t testing.TB) security.Actor {
	t.Helper()
	return e.User(t, security.RoleManufacturer).Actor()
}

// Retailer creates a retailer and returns its actor.
func (e *Env) Retailer(t testing.TB) security.Actor {
	t.Helper()
	return e.User(t, security.RoleRetailer).Actor()
}

// MaterialSpec overrides fixture material fields.
type MaterialSpec struct {
	UnitsPerPacket int64
	MRP            string
	GST            string
	HSN            string
	Commission     money.CommissionPolicy
}

// Material creates an active material. Zero fields of spec get defaults:
// 10 units per packet, MRP 100.00, 18% GST, 5% commission.
func (e *Env) Material(t testing.TB, spec MaterialSpec) *material.Material {
	t.Helper()
	if spec.UnitsPerPacket == 0 {
		spec.UnitsPerPacket = 10
	}
	if spec.MRP == "" {
		spec.MRP = "100.00"
	}
	if spec.GST == "" {
		spec.GST = "18"
	}
	if spec.HSN == "" {
		spec.HSN = "3004"
	}
	if spec.Commission.Type == "" {
		spec.Commission = money.CommissionPolicy{Type: money.CommissionPercentage, Value: money.MustParse("5")}
	}

	n := e.next()
	m, err := e.Materials.Create(e.Ctx, e.Admin, material.CreateInput{
		Code:           fmt.Sprintf("MAT-%03d", n),
		Name:           fmt.Sprintf("Material %d", n),
		UnitsPerPacket: spec.UnitsPerPacket,
		MRPPerPacket:   money.MustParse(spec.MRP),
		HSNCode:        spec.HSN,
		GSTRate:        money.MustParse(spec.GST),
		Commission:     spec.Commission,
	})
	require.NoError(t, err)
	return m
}

// Produce records production of qty at manufacturer.
func (e *Env) Produce(t testing.TB, manufacturer security.Actor, m *material.Material, qty inventory.Quantity) inventory.ManufacturerStock {
	t.Helper()
	res, err := e.Materials.RecordProduction(e.Ctx, manufacturer, material.ProductionInput{
		MaterialID: m.ID,
		Qty:        qty,
	})
	require.NoError(t, err)
	return res.Stock
}

// SubmitSRN drafts and submits a requisition for the calling retailer.
func (e *Env) SubmitSRN(t testing.TB, retailer security.Actor, lines ...srn.LineInput) *srn.SRN {
	t.Helper()
	doc, err := e.SRN.Create(e.Ctx, retailer, srn.CreateInput{Lines: lines})
	require.NoError(t, err)
	doc, err = e.SRN.Submit(e.Ctx, retailer, doc.ID)
	require.NoError(t, err)
	return doc
}

// ApproveAll approves every requested line in full against manufacturer.
func (e *Env) ApproveAll(t testing.TB, doc *srn.SRN, manufacturer security.Actor) *srn.SRN {
	t.Helper()
	lines := make([]srn.LineInput, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, srn.LineInput{MaterialID: l.MaterialID, Qty: l.Requested()})
	}
	out, err := e.SRN.ProcessApproval(e.Ctx, e.Admin, doc.ID, srn.Decision{
		Action:         srn.ActionApprove,
		ManufacturerID: manufacturer.ID,
		Lines:          lines,
	})
	require.NoError(t, err)
	return out
}

// Ship creates and executes the dispatch for an approved requisition and
// returns the order with its pending receipt.
func (e *Env) Ship(t testing.TB, doc *srn.SRN, manufacturer security.Actor) (*dispatch.Order, *grn.GRN) {
	t.Helper()
	order, err := e.Dispatch.CreateDispatch(e.Ctx, manufacturer, doc.ID)
	require.NoError(t, err)
	order, err = e.Dispatch.Execute(e.Ctx, manufacturer, order.ID)
	require.NoError(t, err)
	receipt, err := e.Backend.GRNs.GetByDispatch(e.Ctx, order.ID)
	require.NoError(t, err)
	return order, receipt
}

// ReceiveInFull confirms a receipt with exactly the expected quantities.
func (e *Env) ReceiveInFull(t testing.TB, retailer security.Actor, receipt *grn.GRN) *grn.GRN {
	t.Helper()
	lines := make([]dispatch.ReceivedLine, 0, len(receipt.Items))
	for _, it := range receipt.Items {
		lines = append(lines, dispatch.ReceivedLine{MaterialID: it.MaterialID, Qty: it.Expected()})
	}
	out, err := e.Dispatch.Confirm(e.Ctx, retailer, receipt.ID, dispatch.ConfirmInput{Lines: lines})
	require.NoError(t, err)
	return out
}

// Stock seeds retailer stock for m through the full requisition flow:
// production, approval, dispatch and receipt.
func (e *Env) Stock(t testing.TB, retailer, manufacturer security.Actor, m *material.Material, qty inventory.Quantity) *grn.GRN {
	t.Helper()
	e.Produce(t, manufacturer, m, qty)
	doc := e.SubmitSRN(t, retailer, srn.LineInput{MaterialID: m.ID, Qty: qty})
	doc = e.ApproveAll(t, doc, manufacturer)
	_, receipt := e.Ship(t, doc, manufacturer)
	return e.ReceiveInFull(t, retailer, receipt)
}
