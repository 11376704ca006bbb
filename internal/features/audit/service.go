package audit

import (
	"context"

	"go-org/internal/config"
	"go-org/internal/features/group"
	"go-org/internal/features/person"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SweepReport summarizes one consistency pass over the stored tree.
type SweepReport struct {
	GroupsChecked int `json:"groupsChecked"`
	Drift         int `json:"drift"`
}

// AuditService revalidates the denormalized tree data on a schedule. The
// adoption and assignment paths enforce the invariants up front; the sweep
// is defense in depth and never mutates.
type AuditService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RunSweep(ctx context.Context) (*SweepReport, error)
}

type AuditServiceImpl struct {
	groups    group.GroupRepository
	persons   person.PersonRepository
	cfg       *config.Config
	logger    *zap.Logger
	scheduler *cron.Cron
}

func NewAuditService(groups group.GroupRepository, persons person.PersonRepository, cfg *config.Config, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		groups:  groups,
		persons: persons,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *AuditServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.cfg.AuditSchedule, func() {
		report, err := s.RunSweep(context.Background())
		if err != nil {
			s.logger.Error("hierarchy sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("hierarchy sweep finished",
			zap.Int("groupsChecked", report.GroupsChecked),
			zap.Int("drift", report.Drift))
	})
	if err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

func (s *AuditServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}

// RunSweep checks every group against the invariants: ancestors/hierarchy
// derived from the parent, admins a subset of members, and every member's
// directGroup pointing back.
func (s *AuditServiceImpl) RunSweep(ctx context.Context) (*SweepReport, error) {
	groups, err := s.groups.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*group.Group, len(groups))
	var memberIDs []string
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
		memberIDs = append(memberIDs, groups[i].Members...)
	}

	persons, err := s.persons.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	personByID := make(map[string]*person.Person, len(persons))
	for i := range persons {
		personByID[persons[i].ID] = &persons[i]
	}

	report := &SweepReport{GroupsChecked: len(groups)}
	for i := range groups {
		g := &groups[i]

		for _, admin := range g.Admins {
			if !g.HasMember(admin) {
				report.Drift++
				s.logger.Warn("admin is not a member",
					zap.String("groupId", g.ID.Hex()),
					zap.String("personId", admin))
			}
		}

		for _, childID := range g.Children {
			child, ok := byID[childID]
			if !ok {
				report.Drift++
				s.logger.Warn("child group missing",
					zap.String("groupId", g.ID.Hex()))
				continue
			}
			if !equalIDs(child.Ancestors, append(append([]primitive.ObjectID{}, g.Ancestors...), g.ID)) {
				report.Drift++
				s.logger.Warn("ancestor chain does not match parent",
					zap.String("groupId", child.ID.Hex()))
			}
			if !equalStrings(child.Hierarchy, append(append([]string{}, g.Hierarchy...), child.Name)) {
				report.Drift++
				s.logger.Warn("hierarchy path does not match parent",
					zap.String("groupId", child.ID.Hex()))
			}
		}

		for _, m := range g.Members {
			p, ok := personByID[m]
			if !ok {
				report.Drift++
				s.logger.Warn("member record missing",
					zap.String("groupId", g.ID.Hex()),
					zap.String("personId", m))
				continue
			}
			if p.DirectGroup == nil || *p.DirectGroup != g.ID {
				report.Drift++
				s.logger.Warn("member's direct group disagrees",
					zap.String("groupId", g.ID.Hex()),
					zap.String("personId", m))
			}
		}
	}

	return report, nil
}

func equalIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
