package person

import (
	"context"
	"time"

	"go-org/internal/database"
	"go-org/internal/errs"
	"go-org/internal/features/group"
	"go-org/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UpdatePersonInput patches only the provided fields; unspecified ones are
// never cleared.
type UpdatePersonInput struct {
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Job               *string `json:"job,omitempty"`
	Mail              *string `json:"mail,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Rank              *string `json:"rank,omitempty"`
	Address           *string `json:"address,omitempty"`
	IsSecurityOfficer *bool   `json:"isSecurityOfficer,omitempty"`
	Clearance         *int    `json:"clearance,omitempty"`
}

type PersonService interface {
	CreateUser(ctx context.Context, person *Person) (*Person, error)
	GetUser(ctx context.Context, id string) (*Person, error)
	GetUsers(ctx context.Context) ([]Person, error)
	GetUpdatedFrom(ctx context.Context, from, to time.Time) ([]Person, error)
	UpdateUser(ctx context.Context, id string, in UpdatePersonInput) (*Person, error)
	RemoveUser(ctx context.Context, id string) (*RemoveResult, error)
	Discharge(ctx context.Context, id string) (*DischargeResult, error)
	Assign(ctx context.Context, personID string, groupID primitive.ObjectID) error
	Manage(ctx context.Context, personID string, groupID primitive.ObjectID) error
	GetGroupMembers(ctx context.Context, groupID primitive.ObjectID) ([]Person, error)
	ExportRoster(ctx context.Context, groupID primitive.ObjectID) ([]byte, string, error)
}

type PersonServiceImpl struct {
	repo      PersonRepository
	groupRepo group.GroupRepository
	tx        database.TxRunner
	logger    *zap.Logger
}

func NewPersonService(repo PersonRepository, groupRepo group.GroupRepository, tx database.TxRunner, logger *zap.Logger) PersonService {
	return &PersonServiceImpl{
		repo:      repo,
		groupRepo: groupRepo,
		tx:        tx,
		logger:    logger,
	}
}

func (s *PersonServiceImpl) CreateUser(ctx context.Context, person *Person) (*Person, error) {
	if person.Rank == "" {
		person.Rank = DefaultRank
	}
	person.Alive = true
	person.DirectGroup = nil

	if err := validation.Struct(person); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, person); err != nil {
		return nil, err
	}

	s.logger.Info("person created", zap.String("personId", person.ID))
	return person, nil
}

func (s *PersonServiceImpl) GetUser(ctx context.Context, id string) (*Person, error) {
	return s.repo.FindByID(ctx, id)
}

// GetUsers lists active persons only; discharged records stay out of
// default listings but remain addressable by id.
func (s *PersonServiceImpl) GetUsers(ctx context.Context) ([]Person, error) {
	return s.repo.FindAlive(ctx)
}

func (s *PersonServiceImpl) GetUpdatedFrom(ctx context.Context, from, to time.Time) ([]Person, error) {
	return s.repo.FindUpdatedBetween(ctx, from, to)
}

func (s *PersonServiceImpl) UpdateUser(ctx context.Context, id string, in UpdatePersonInput) (*Person, error) {
	fields := bson.M{}
	if in.FirstName != nil {
		if err := validation.NonBlank("firstName", *in.FirstName); err != nil {
			return nil, err
		}
		fields["firstName"] = *in.FirstName
	}
	if in.LastName != nil {
		if err := validation.NonBlank("lastName", *in.LastName); err != nil {
			return nil, err
		}
		fields["lastName"] = *in.LastName
	}
	if in.Job != nil {
		fields["job"] = *in.Job
	}
	if in.Mail != nil {
		fields["mail"] = *in.Mail
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Rank != nil {
		if err := validation.NonBlank("rank", *in.Rank); err != nil {
			return nil, err
		}
		fields["rank"] = *in.Rank
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.IsSecurityOfficer != nil {
		fields["isSecurityOfficer"] = *in.IsSecurityOfficer
	}
	if in.Clearance != nil {
		if err := validation.NonNegative("clearance", *in.Clearance); err != nil {
			return nil, err
		}
		fields["clearance"] = *in.Clearance
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("person", id)
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, id)
}

// Assign is a transfer, not additive: the person leaves their previous
// group's members (and admins) and joins the new group, all in one atomic
// unit.
func (s *PersonServiceImpl) Assign(ctx context.Context, personID string, groupID primitive.ObjectID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		person, err := s.repo.FindByID(ctx, personID)
		if err != nil {
			return err
		}
		if person == nil || !person.Alive {
			return errs.NotFound("person", personID)
		}

		g, err := s.groupRepo.FindByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return errs.NotFound("group", groupID.Hex())
		}

		if person.DirectGroup != nil && *person.DirectGroup != groupID {
			if err := s.groupRepo.RemoveMember(ctx, *person.DirectGroup, personID); err != nil {
				return err
			}
		}

		if err := s.groupRepo.AddMember(ctx, groupID, personID); err != nil {
			return err
		}
		return s.repo.SetDirectGroup(ctx, personID, &groupID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("person assigned",
		zap.String("personId", personID),
		zap.String("groupId", groupID.Hex()))
	return nil
}

// Manage promotes a person to admin of their own direct group. Promotion
// never implicitly reassigns.
func (s *PersonServiceImpl) Manage(ctx context.Context, personID string, groupID primitive.ObjectID) error {
	person, err := s.repo.FindByID(ctx, personID)
	if err != nil {
		return err
	}
	if person == nil || !person.Alive {
		return errs.NotFound("person", personID)
	}

	g, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return errs.NotFound("group", groupID.Hex())
	}

	if person.DirectGroup == nil || *person.DirectGroup != groupID {
		return errs.Invariant("person", personID, "person is not a direct member of the group")
	}

	return s.groupRepo.AddAdmin(ctx, groupID, personID)
}

// Discharge soft-removes a person: excluded from listings, membership
// cleared, record retained.
func (s *PersonServiceImpl) Discharge(ctx context.Context, id string) (*DischargeResult, error) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		person, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if person == nil {
			return errs.NotFound("person", id)
		}

		if err := s.cascadeMembership(ctx, person); err != nil {
			return err
		}
		return s.repo.UpdateFields(ctx, id, bson.M{"alive": false})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("person discharged", zap.String("personId", id))
	return &DischargeResult{Matched: 1}, nil
}

// RemoveUser hard-deletes after the same membership cascade as discharge.
// Removing an absent person succeeds with zero effect.
func (s *PersonServiceImpl) RemoveUser(ctx context.Context, id string) (*RemoveResult, error) {
	result := &RemoveResult{}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		person, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if person == nil {
			return nil
		}

		if err := s.cascadeMembership(ctx, person); err != nil {
			return err
		}

		matched, deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		result.Matched = matched
		result.Deleted = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cascadeMembership strips the person from their direct group's members and
// admins and clears the weak reference back.
func (s *PersonServiceImpl) cascadeMembership(ctx context.Context, person *Person) error {
	if person.DirectGroup == nil {
		return nil
	}
	if err := s.groupRepo.RemoveMember(ctx, *person.DirectGroup, person.ID); err != nil {
		return err
	}
	return s.repo.SetDirectGroup(ctx, person.ID, nil)
}

// GetGroupMembers returns the union of members over the subtree rooted at
// groupID. Membership is exclusive to one group, so no dedup is needed, but
// the traversal still guards against cycles.
func (s *PersonServiceImpl) GetGroupMembers(ctx context.Context, groupID primitive.ObjectID) ([]Person, error) {
	root, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errs.NotFound("group", groupID.Hex())
	}

	groups, err := group.Subtree(ctx, s.groupRepo, root)
	if err != nil {
		return nil, err
	}

	var memberIDs []string
	for _, g := range groups {
		memberIDs = append(memberIDs, g.Members...)
	}

	return s.repo.FindByIDs(ctx, memberIDs)
}
