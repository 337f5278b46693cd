package services

import (
	"context"
	"fmt"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

// AccessService answers "may this caller act on that record". Admins may act
// on anything; landlords only on records reachable from their own properties.
type AccessService struct {
	scope        leaseScopeLoader
	props        repositories.PropertyRepository
	units        repositories.UnitRepository
	notices      repositories.EvictionNoticeRepository
	dispositions repositories.DepositDispositionRepository
	checklists   repositories.TurnoverChecklistRepository
}

func NewAccessService(
	leases repositories.LeaseRepository,
	units repositories.UnitRepository,
	props repositories.PropertyRepository,
	notices repositories.EvictionNoticeRepository,
	dispositions repositories.DepositDispositionRepository,
	checklists repositories.TurnoverChecklistRepository,
) *AccessService {
	return &AccessService{
		scope:        leaseScopeLoader{leases: leases, units: units, props: props},
		props:        props,
		units:        units,
		notices:      notices,
		dispositions: dispositions,
		checklists:   checklists,
	}
}

func (s *AccessService) AuthorizeLease(ctx context.Context, leaseID uuid.UUID, userID, role string) error {
	if role == constants.RoleAdmin {
		return nil
	}
	sc, err := s.scope.load(ctx, leaseID)
	if err != nil {
		return err
	}
	return checkLandlord(sc.LandlordID, userID)
}

func (s *AccessService) AuthorizeUnit(ctx context.Context, unitID uuid.UUID, userID, role string) error {
	if role == constants.RoleAdmin {
		return nil
	}
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return fmt.Errorf("%w: unit %s", utils.ErrNotFound, unitID)
	}
	prop, err := s.props.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return err
	}
	if prop == nil || prop.ManagerID == nil {
		return fmt.Errorf("%w: landlord for unit %s", utils.ErrNotFound, unitID)
	}
	return checkLandlord(*prop.ManagerID, userID)
}

func (s *AccessService) AuthorizeDisposition(ctx context.Context, dispositionID uuid.UUID, userID, role string) error {
	if role == constants.RoleAdmin {
		return nil
	}
	d, err := s.dispositions.GetByID(ctx, dispositionID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: disposition %s", utils.ErrNotFound, dispositionID)
	}
	return checkLandlord(d.LandlordID, userID)
}

func (s *AccessService) AuthorizeNotice(ctx context.Context, noticeID uuid.UUID, userID, role string) error {
	if role == constants.RoleAdmin {
		return nil
	}
	n, err := s.notices.GetByID(ctx, noticeID)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("%w: eviction notice %s", utils.ErrNotFound, noticeID)
	}
	return s.AuthorizeLease(ctx, n.LeaseID, userID, role)
}

func (s *AccessService) AuthorizeChecklist(ctx context.Context, checklistID uuid.UUID, userID, role string) error {
	if role == constants.RoleAdmin {
		return nil
	}
	c, err := s.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: checklist %s", utils.ErrNotFound, checklistID)
	}
	return s.AuthorizeUnit(ctx, c.UnitID, userID, role)
}

func checkLandlord(landlordID uuid.UUID, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil || uid != landlordID {
		return utils.ErrForbidden
	}
	return nil
}
