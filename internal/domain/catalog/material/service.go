package material

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/entity"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Service provides catalog maintenance and production intake.
type Service struct {
	repo      Repository
	ledger    *inventory.ManufacturerLedger
	numerator numerator.Generator
	directory auth.Directory
	publisher notification.Publisher
	txManager tx.Manager
}

// NewService creates a new material service.
func NewService(
	repo Repository,
	ledger *inventory.ManufacturerLedger,
	numerator numerator.Generator,
	directory auth.Directory,
	publisher notification.Publisher,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		numerator: numerator,
		directory: directory,
		publisher: publisher,
		txManager: txManager,
	}
}

// Create adds a material. Admin only; a duplicate code is a Conflict.
func (s *Service) Create(ctx context.Context, actor security.Actor, in CreateInput) (*Material, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	m := &Material{
		BaseEntity:      entity.NewBaseEntity(time.Now()),
		Code:            NormalizeCode(in.Code),
		Name:            in.Name,
		UnitsPerPacket:  in.UnitsPerPacket,
		MRPPerPacket:    in.MRPPerPacket,
		HSNCode:         in.HSNCode,
		GSTRate:         in.GSTRate,
		CommissionType:  in.Commission.Type,
		CommissionValue: in.Commission.Value,
		IsActive:        true,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByCode(ctx, m.Code)
		if err != nil {
			return fmt.Errorf("check code exists: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "material created", "material_id", m.ID, "code", m.Code)
	return m, nil
}

// Update changes mutable fields. UnitsPerPacket is immutable; HSN code and GST
// rate are locked once the material has been produced.
func (s *Service) Update(ctx context.Context, actor security.Actor, materialID id.ID, in UpdateInput) (*Material, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	var m *Material
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}

		if in.UnitsPerPacket != nil && *in.UnitsPerPacket != m.UnitsPerPacket {
			return apperror.NewInvalidArgument("units per packet cannot be changed").
				WithDetail("field", "unitsPerPacket")
		}
		if m.HasProduction {
			if in.HSNCode != nil && *in.HSNCode != m.HSNCode {
				return apperror.NewInvalidState("material", "PRODUCED", "change HSN code of")
			}
			if in.GSTRate != nil && !in.GSTRate.Equal(m.GSTRate) {
				return apperror.NewInvalidState("material", "PRODUCED", "change GST rate of")
			}
		}

		if in.Name != nil {
			m.Name = *in.Name
		}
		if in.MRPPerPacket != nil {
			m.MRPPerPacket = *in.MRPPerPacket
		}
		if in.HSNCode != nil {
			m.HSNCode = *in.HSNCode
		}
		if in.GSTRate != nil {
			m.GSTRate = *in.GSTRate
		}
		if in.Commission != nil {
			m.CommissionType = in.Commission.Type
			m.CommissionValue = in.Commission.Value
		}
		if err := m.Validate(); err != nil {
			return err
		}

		m.Touch(time.Now())
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "material updated", "material_id", m.ID)
	return m, nil
}

// SetActive activates or retires a material. Inactive materials cannot be requested or sold.
func (s *Service) SetActive(ctx context.Context, actor security.Actor, materialID id.ID, active bool) (*Material, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}

	var m *Material
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		m.IsActive = active
		m.Touch(time.Now())
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "material activation changed", "material_id", m.ID, "active", active)
	return m, nil
}

// Get returns a material by id.
func (s *Service) Get(ctx context.Context, materialID id.ID) (*Material, error) {
	return s.repo.GetByID(ctx, materialID)
}

// Resolve looks a material up by id or, failing that, by code.
func (s *Service) Resolve(ctx context.Context, idOrCode string) (*Material, error) {
	if materialID, err := id.Parse(idOrCode); err == nil {
		return s.repo.GetByID(ctx, materialID)
	}
	return s.repo.GetByCode(ctx, NormalizeCode(idOrCode))
}

// RequireActive returns the material or InvalidArgument if it is retired.
func (s *Service) RequireActive(ctx context.Context, materialID id.ID) (*Material, error) {
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, apperror.NewInvalidArgument("material is inactive").
			WithDetail("material_id", materialID)
	}
	return m, nil
}

// List returns catalog entries ordered by code.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Material, error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// UnitsPerPacket implements inventory.PacketSizer.
func (s *Service) UnitsPerPacket(ctx context.Context, materialID id.ID) (int64, error) {
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return 0, err
	}
	return m.UnitsPerPacket, nil
}

// RecordProduction adds produced stock under a new BATCH number and locks the
// material's tax classification.
func (s *Service) RecordProduction(ctx context.Context, actor security.Actor, in ProductionInput) (*ProductionResult, error) {
	if err := security.Require(actor, security.RoleManufacturer, security.RoleAdmin); err != nil {
		return nil, err
	}
	manufacturerID := in.ManufacturerID
	if !actor.IsAdmin() {
		manufacturerID = actor.ID
	}
	if id.IsNil(manufacturerID) {
		return nil, apperror.NewInvalidArgument("manufacturer is required").WithDetail("field", "manufacturerId")
	}
	if err := in.Qty.ValidatePositive("production quantity"); err != nil {
		return nil, err
	}

	var result ProductionResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.directory.ActiveUser(ctx, manufacturerID, security.RoleManufacturer); err != nil {
			return err
		}
		m, err := s.repo.GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if !m.IsActive {
			return apperror.NewInvalidArgument("material is inactive").WithDetail("material_id", m.ID)
		}

		batch, err := s.numerator.NextNumber(ctx, numerator.PrefixBatch)
		if err != nil {
			return fmt.Errorf("generate batch number: %w", err)
		}

		stock, err := s.ledger.AddProduction(ctx, inventory.Movement{
			MaterialID: m.ID,
			OwnerID:    manufacturerID,
			Qty:        in.Qty,
			Ref:        inventory.Reference{Type: inventory.RefBatch, ID: id.New(), Number: batch},
			ActorID:    actor.ID,
		})
		if err != nil {
			return err
		}

		if !m.HasProduction {
			m.HasProduction = true
			m.Touch(time.Now())
			if err := s.repo.Update(ctx, m); err != nil {
				return fmt.Errorf("mark material produced: %w", err)
			}
		}

		notification.Emit(ctx, s.publisher, notification.NewEvent(
			notification.ToAdmins(),
			notification.TypeProductionRecorded,
			"Production recorded",
			fmt.Sprintf("Batch %s: %d packets and %d units of %s", batch, in.Qty.Packets, in.Qty.Units, m.Code),
			m.ID,
		))

		result = ProductionResult{BatchNumber: batch, Material: m, Stock: stock, RecordedAt: stock.UpdatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production recorded",
		"batch", result.BatchNumber,
		"material_id", result.Material.ID,
		"manufacturer_id", manufacturerID,
	)
	return &result, nil
}
