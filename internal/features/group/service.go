package group

import (
	"context"

	"go-org/internal/database"
	"go-org/internal/errs"
	"go-org/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MemberDetacher clears the direct group of persons orphaned by a group
// removal. Implemented by the person repository; kept as a local interface
// to avoid a package cycle.
type MemberDetacher interface {
	DetachAll(ctx context.Context, personIDs []string) error
}

// UpdateGroupInput patches only the provided fields.
type UpdateGroupInput struct {
	Name      *string `json:"name,omitempty"`
	Type      *string `json:"type,omitempty"`
	Clearance *int    `json:"clearance,omitempty"`
}

type GroupService interface {
	CreateGroup(ctx context.Context, group *Group) error
	GetGroup(ctx context.Context, id primitive.ObjectID) (*Group, error)
	GetAllGroups(ctx context.Context) ([]Group, error)
	UpdateGroup(ctx context.Context, id primitive.ObjectID, in UpdateGroupInput) (*Group, error)
	ChildrenAdoption(ctx context.Context, parentID primitive.ObjectID, childIDs []primitive.ObjectID) error
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
	CollectSubtree(ctx context.Context, rootID primitive.ObjectID) ([]Group, error)
}

type GroupServiceImpl struct {
	repo     GroupRepository
	detacher MemberDetacher
	tx       database.TxRunner
	logger   *zap.Logger
}

func NewGroupService(repo GroupRepository, detacher MemberDetacher, tx database.TxRunner, logger *zap.Logger) GroupService {
	return &GroupServiceImpl{
		repo:     repo,
		detacher: detacher,
		tx:       tx,
		logger:   logger,
	}
}

// CreateGroup creates a standalone group: no parent, no children. Tree
// position is only ever gained through adoption.
func (s *GroupServiceImpl) CreateGroup(ctx context.Context, group *Group) error {
	if err := validation.Struct(group); err != nil {
		return err
	}

	group.Admins = []string{}
	group.Members = []string{}
	group.Children = []primitive.ObjectID{}
	group.Ancestors = []primitive.ObjectID{}
	group.Hierarchy = []string{group.Name}

	if err := s.repo.Create(ctx, group); err != nil {
		return err
	}

	s.logger.Info("group created", zap.String("groupId", group.ID.Hex()))
	return nil
}

func (s *GroupServiceImpl) GetGroup(ctx context.Context, id primitive.ObjectID) (*Group, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GroupServiceImpl) GetAllGroups(ctx context.Context) ([]Group, error) {
	return s.repo.FindAll(ctx)
}

// UpdateGroup patches name/type/clearance. A rename changes the hierarchy
// path of the whole subtree, so it triggers the same lineage rewrite as a
// reparenting.
func (s *GroupServiceImpl) UpdateGroup(ctx context.Context, id primitive.ObjectID, in UpdateGroupInput) (*Group, error) {
	fields := bson.M{}
	if in.Name != nil {
		if err := validation.NonBlank("name", *in.Name); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Clearance != nil {
		if err := validation.NonNegative("clearance", *in.Clearance); err != nil {
			return nil, err
		}
		fields["clearance"] = *in.Clearance
	}

	var updated *Group
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errs.NotFound("group", id.Hex())
		}

		if len(fields) > 0 {
			if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}

		if in.Name != nil && *in.Name != existing.Name {
			existing.Name = *in.Name
			parent, err := s.repo.FindParent(ctx, id)
			if err != nil {
				return err
			}
			if err := s.recomputeSubtree(ctx, parent, existing); err != nil {
				return err
			}
		}

		updated, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChildrenAdoption attaches each child to the parent and re-derives the
// ancestor chain and hierarchy path of every group in each child's subtree.
// The whole batch is one atomic unit: a failure mid-subtree rolls back
// every write.
func (s *GroupServiceImpl) ChildrenAdoption(ctx context.Context, parentID primitive.ObjectID, childIDs []primitive.ObjectID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return errs.NotFound("group", parentID.Hex())
		}

		for _, childID := range childIDs {
			if childID == parentID {
				return errs.Cycle("group", childID.Hex(), "a group cannot adopt itself")
			}

			child, err := s.repo.FindByID(ctx, childID)
			if err != nil {
				return err
			}
			if child == nil {
				return errs.NotFound("group", childID.Hex())
			}

			if parent.HasAncestor(childID) {
				return errs.Cycle("group", childID.Hex(), "adoption would make a group its own descendant's child")
			}

			oldParent, err := s.repo.FindParent(ctx, childID)
			if err != nil {
				return err
			}
			if oldParent != nil && oldParent.ID != parentID {
				if err := s.repo.DetachChild(ctx, oldParent.ID, childID); err != nil {
					return err
				}
			}

			if !parent.HasChild(childID) {
				if err := s.repo.AttachChild(ctx, parentID, childID); err != nil {
					return err
				}
				parent.Children = append(parent.Children, childID)
			}

			if err := s.recomputeSubtree(ctx, parent, child); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("children adopted",
		zap.String("groupId", parentID.Hex()),
		zap.Int("children", len(childIDs)))
	return nil
}

// DeleteGroup removes a single node. Its children are re-attached to the
// deleted node's parent, or promoted to roots when the node was a root
// itself; descendant groups are never deleted. Members of the removed
// group lose their direct group.
func (s *GroupServiceImpl) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		g, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if g == nil {
			return errs.NotFound("group", id.Hex())
		}

		parent, err := s.repo.FindParent(ctx, id)
		if err != nil {
			return err
		}
		if parent != nil {
			if err := s.repo.DetachChild(ctx, parent.ID, id); err != nil {
				return err
			}
		}

		children, err := s.repo.FindByIDs(ctx, g.Children)
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			if parent != nil {
				if err := s.repo.AttachChild(ctx, parent.ID, child.ID); err != nil {
					return err
				}
			}
			if err := s.recomputeSubtree(ctx, parent, child); err != nil {
				return err
			}
		}

		if len(g.Members) > 0 {
			if err := s.detacher.DetachAll(ctx, g.Members); err != nil {
				return err
			}
		}

		return s.repo.Delete(ctx, id)
	})
}

// CollectSubtree returns the group rooted at rootID plus every transitive
// child. Traversal is iterative with a visited set: the acyclic invariant
// is enforced at adoption time but not silently trusted here.
func (s *GroupServiceImpl) CollectSubtree(ctx context.Context, rootID primitive.ObjectID) ([]Group, error) {
	root, err := s.repo.FindByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errs.NotFound("group", rootID.Hex())
	}
	return Subtree(ctx, s.repo, root)
}

// Subtree walks root and every transitive child iteratively, guarding
// against cycles. Shared with the person feature's membership query.
func Subtree(ctx context.Context, repo GroupRepository, root *Group) ([]Group, error) {
	result := []Group{*root}
	visited := map[primitive.ObjectID]bool{root.ID: true}

	frontier := root.Children
	for len(frontier) > 0 {
		groups, err := repo.FindByIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}

		frontier = nil
		for _, g := range groups {
			if visited[g.ID] {
				continue
			}
			visited[g.ID] = true
			result = append(result, g)
			frontier = append(frontier, g.Children...)
		}
	}
	return result, nil
}

// lineage pairs a group with its freshly derived ancestor chain and
// hierarchy path.
type lineage struct {
	group     *Group
	ancestors []primitive.ObjectID
	hierarchy []string
}

// recomputeSubtree re-derives ancestors and hierarchy for node and every
// descendant, persisting each mutated group. A nil parent means node is
// (now) a root. Iterative BFS with a visited-set guard.
func (s *GroupServiceImpl) recomputeSubtree(ctx context.Context, parent *Group, node *Group) error {
	var start lineage
	if parent == nil {
		start = lineage{
			group:     node,
			ancestors: []primitive.ObjectID{},
			hierarchy: []string{node.Name},
		}
	} else {
		start = lineage{
			group:     node,
			ancestors: appendIDs(parent.Ancestors, parent.ID),
			hierarchy: appendNames(parent.Hierarchy, node.Name),
		}
	}

	queue := []lineage{start}
	visited := map[primitive.ObjectID]bool{}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if visited[item.group.ID] {
			continue
		}
		visited[item.group.ID] = true

		if err := s.repo.UpdateLineage(ctx, item.group.ID, item.ancestors, item.hierarchy); err != nil {
			return err
		}

		if len(item.group.Children) == 0 {
			continue
		}
		children, err := s.repo.FindByIDs(ctx, item.group.Children)
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			queue = append(queue, lineage{
				group:     child,
				ancestors: appendIDs(item.ancestors, item.group.ID),
				hierarchy: appendNames(item.hierarchy, child.Name),
			})
		}
	}
	return nil
}

func appendIDs(base []primitive.ObjectID, extra primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(base)+1)
	out = append(out, base...)
	return append(out, extra)
}

func appendNames(base []string, extra string) []string {
	out := make([]string, 0, len(base)+1)
	out = append(out, base...)
	return append(out, extra)
}
