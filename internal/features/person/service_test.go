package person

import (
	"context"
	"sort"
	"testing"
	"time"

	"go-org/internal/errs"
	"go-org/internal/features/group"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakePersonRepo keeps persons in memory with a manually advanced clock so
// the updated-window query is deterministic.
type fakePersonRepo struct {
	persons map[string]*Person
	order   []string
	now     time.Time
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{
		persons: map[string]*Person{},
		now:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakePersonRepo) tick() {
	r.now = r.now.Add(time.Minute)
}

func copyPerson(p *Person) *Person {
	out := *p
	if p.DirectGroup != nil {
		id := *p.DirectGroup
		out.DirectGroup = &id
	}
	return &out
}

func (r *fakePersonRepo) Create(ctx context.Context, person *Person) error {
	if _, ok := r.persons[person.ID]; ok {
		return errs.Conflict("person", person.ID)
	}
	person.CreatedAt = r.now
	person.UpdatedAt = r.now
	r.persons[person.ID] = copyPerson(person)
	r.order = append(r.order, person.ID)
	return nil
}

func (r *fakePersonRepo) FindByID(ctx context.Context, id string) (*Person, error) {
	p, ok := r.persons[id]
	if !ok {
		return nil, nil
	}
	return copyPerson(p), nil
}

func (r *fakePersonRepo) FindByIDs(ctx context.Context, ids []string) ([]Person, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []Person{}
	for _, id := range r.order {
		if want[id] {
			out = append(out, *copyPerson(r.persons[id]))
		}
	}
	return out, nil
}

func (r *fakePersonRepo) FindAlive(ctx context.Context) ([]Person, error) {
	out := []Person{}
	for _, id := range r.order {
		if p := r.persons[id]; p.Alive {
			out = append(out, *copyPerson(p))
		}
	}
	return out, nil
}

func (r *fakePersonRepo) FindUpdatedBetween(ctx context.Context, from, to time.Time) ([]Person, error) {
	out := []Person{}
	for _, id := range r.order {
		p := r.persons[id]
		if p.UpdatedAt.After(from) && !p.UpdatedAt.After(to) {
			out = append(out, *copyPerson(p))
		}
	}
	return out, nil
}

func (r *fakePersonRepo) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	p, ok := r.persons[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "firstName":
			p.FirstName = v.(string)
		case "lastName":
			p.LastName = v.(string)
		case "job":
			p.Job = v.(string)
		case "mail":
			p.Mail = v.(string)
		case "phone":
			p.Phone = v.(string)
		case "rank":
			p.Rank = v.(string)
		case "address":
			p.Address = v.(string)
		case "isSecurityOfficer":
			p.IsSecurityOfficer = v.(bool)
		case "clearance":
			p.Clearance = v.(int)
		case "alive":
			p.Alive = v.(bool)
		}
	}
	p.UpdatedAt = r.now
	return nil
}

func (r *fakePersonRepo) SetDirectGroup(ctx context.Context, id string, groupID *primitive.ObjectID) error {
	p, ok := r.persons[id]
	if !ok {
		return nil
	}
	if groupID == nil {
		p.DirectGroup = nil
	} else {
		gid := *groupID
		p.DirectGroup = &gid
	}
	p.UpdatedAt = r.now
	return nil
}

func (r *fakePersonRepo) DetachAll(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if p, ok := r.persons[id]; ok {
			p.DirectGroup = nil
			p.UpdatedAt = r.now
		}
	}
	return nil
}

func (r *fakePersonRepo) Delete(ctx context.Context, id string) (int64, int64, error) {
	if _, ok := r.persons[id]; !ok {
		return 0, 0, nil
	}
	delete(r.persons, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, 1, nil
}

// fakeGroupStore implements group.GroupRepository over a map; only the
// operations the person service reaches are stateful.
type fakeGroupStore struct {
	groups map[primitive.ObjectID]*group.Group
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: map[primitive.ObjectID]*group.Group{}}
}

func (r *fakeGroupStore) add(name string, children ...primitive.ObjectID) primitive.ObjectID {
	g := &group.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Admins:    []string{},
		Members:   []string{},
		Children:  append([]primitive.ObjectID{}, children...),
		Hierarchy: []string{name},
	}
	r.groups[g.ID] = g
	return g.ID
}

func (r *fakeGroupStore) Create(ctx context.Context, g *group.Group) error {
	g.ID = primitive.NewObjectID()
	r.groups[g.ID] = g
	return nil
}

func (r *fakeGroupStore) FindByID(ctx context.Context, id primitive.ObjectID) (*group.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (r *fakeGroupStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]group.Group, error) {
	var out []group.Group
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupStore) FindAll(ctx context.Context) ([]group.Group, error) {
	var out []group.Group
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeGroupStore) FindParent(ctx context.Context, childID primitive.ObjectID) (*group.Group, error) {
	for _, g := range r.groups {
		for _, c := range g.Children {
			if c == childID {
				out := *g
				return &out, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeGroupStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	return nil
}

func (r *fakeGroupStore) UpdateLineage(ctx context.Context, id primitive.ObjectID, ancestors []primitive.ObjectID, hierarchy []string) error {
	return nil
}

func (r *fakeGroupStore) AttachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	p := r.groups[parentID]
	p.Children = append(p.Children, childID)
	return nil
}

func (r *fakeGroupStore) DetachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	p := r.groups[parentID]
	out := p.Children[:0]
	for _, c := range p.Children {
		if c != childID {
			out = append(out, c)
		}
	}
	p.Children = out
	return nil
}

func (r *fakeGroupStore) AddMember(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	g := r.groups[groupID]
	if !g.HasMember(personID) {
		g.Members = append(g.Members, personID)
	}
	return nil
}

func (r *fakeGroupStore) RemoveMember(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	g := r.groups[groupID]
	members := g.Members[:0]
	for _, m := range g.Members {
		if m != personID {
			members = append(members, m)
		}
	}
	g.Members = members
	admins := g.Admins[:0]
	for _, a := range g.Admins {
		if a != personID {
			admins = append(admins, a)
		}
	}
	g.Admins = admins
	return nil
}

func (r *fakeGroupStore) AddAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	g := r.groups[groupID]
	if !g.HasAdmin(personID) {
		g.Admins = append(g.Admins, personID)
	}
	return nil
}

func (r *fakeGroupStore) RemoveAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	g := r.groups[groupID]
	out := g.Admins[:0]
	for _, a := range g.Admins {
		if a != personID {
			out = append(out, a)
		}
	}
	g.Admins = out
	return nil
}

func (r *fakeGroupStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(r.groups, id)
	return nil
}

type passTx struct{}

func (passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (PersonService, *fakePersonRepo, *fakeGroupStore) {
	repo := newFakePersonRepo()
	groups := newFakeGroupStore()
	svc := NewPersonService(repo, groups, passTx{}, zap.NewNop())
	return svc, repo, groups
}

func mustCreatePerson(t *testing.T, svc PersonService, id string) *Person {
	t.Helper()
	p, err := svc.CreateUser(context.Background(), &Person{
		ID:        id,
		FirstName: "Avi",
		LastName:  "Ron",
	})
	require.NoError(t, err)
	return p
}

func TestCreateUserDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	p := mustCreatePerson(t, svc, "1234567")
	assert.Equal(t, DefaultRank, p.Rank)
	assert.True(t, p.Alive)
	assert.Nil(t, p.DirectGroup)
	assert.Equal(t, 0, p.Clearance)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []Person{
		{ID: "123456t", FirstName: "Avi", LastName: "Ron"},
		{ID: "123456", FirstName: "Avi", LastName: "Ron"},
		{ID: "12345678", FirstName: "Avi", LastName: "Ron"},
		{ID: "1234567", FirstName: "  ", LastName: "Ron"},
		{ID: "1234567", FirstName: "Avi", LastName: ""},
		{ID: "1234567", FirstName: "Avi", LastName: "Ron", Mail: "not-a-mail"},
	}
	for _, c := range cases {
		_, err := svc.CreateUser(ctx, &c)
		assert.True(t, errs.IsValidation(err), "expected validation error for %+v", c)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	svc, _, _ := newTestService()

	mustCreatePerson(t, svc, "1234567")
	_, err := svc.CreateUser(context.Background(), &Person{
		ID:        "1234567",
		FirstName: "Eli",
		LastName:  "Kopter",
	})
	assert.True(t, errs.IsConflict(err))
}

func TestAssignTransfersBetweenGroups(t *testing.T) {
	svc, repo, groups := newTestService()
	ctx := context.Background()

	g1 := groups.add("G1")
	g2 := groups.add("G2")
	p := mustCreatePerson(t, svc, "1234567")

	require.NoError(t, svc.Assign(ctx, p.ID, g1))
	assert.Equal(t, []string{"1234567"}, groups.groups[g1].Members)

	require.NoError(t, svc.Assign(ctx, p.ID, g2))
	assert.Empty(t, groups.groups[g1].Members)
	assert.Equal(t, []string{"1234567"}, groups.groups[g2].Members)

	stored := repo.persons[p.ID]
	require.NotNil(t, stored.DirectGroup)
	assert.Equal(t, g2, *stored.DirectGroup)
}

func TestAssignMissing(t *testing.T) {
	svc, _, groups := newTestService()
	ctx := context.Background()

	g1 := groups.add("G1")
	assert.True(t, errs.IsNotFound(svc.Assign(ctx, "7654321", g1)))

	p := mustCreatePerson(t, svc, "1234567")
	assert.True(t, errs.IsNotFound(svc.Assign(ctx, p.ID, primitive.NewObjectID())))

	_, err := svc.Discharge(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, errs.IsNotFound(svc.Assign(ctx, p.ID, g1)))
}

func TestManage(t *testing.T) {
	svc, _, groups := newTestService()
	ctx := context.Background()

	g1 := groups.add("G1")
	g2 := groups.add("G2")
	p := mustCreatePerson(t, svc, "1234567")

	// No direct group yet.
	assert.True(t, errs.IsInvariant(svc.Manage(ctx, p.ID, g1)))

	require.NoError(t, svc.Assign(ctx, p.ID, g1))

	// Direct group differs from the target.
	assert.True(t, errs.IsInvariant(svc.Manage(ctx, p.ID, g2)))
	assert.Empty(t, groups.groups[g2].Admins)

	require.NoError(t, svc.Manage(ctx, p.ID, g1))
	assert.Equal(t, []string{"1234567"}, groups.groups[g1].Admins)

	assert.True(t, errs.IsNotFound(svc.Manage(ctx, "7654321", g1)))
	assert.True(t, errs.IsNotFound(svc.Manage(ctx, p.ID, primitive.NewObjectID())))
}

func TestDischargeCascades(t *testing.T) {
	svc, _, groups := newTestService()
	ctx := context.Background()

	g1 := groups.add("G1")
	p := mustCreatePerson(t, svc, "1234567")
	require.NoError(t, svc.Assign(ctx, p.ID, g1))
	require.NoError(t, svc.Manage(ctx, p.ID, g1))

	res, err := svc.Discharge(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	assert.Empty(t, groups.groups[g1].Members)
	assert.Empty(t, groups.groups[g1].Admins)

	// Gone from listings, still resolvable by id.
	alive, err := svc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, alive)

	got, err := svc.GetUser(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Alive)
	assert.Nil(t, got.DirectGroup)

	_, err = svc.Discharge(ctx, "7654321")
	assert.True(t, errs.IsNotFound(err))
}

func TestRemoveUser(t *testing.T) {
	svc, _, groups := newTestService()
	ctx := context.Background()

	g1 := groups.add("G1")
	p := mustCreatePerson(t, svc, "1234567")
	require.NoError(t, svc.Assign(ctx, p.ID, g1))

	res, err := svc.RemoveUser(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, int64(1), res.Deleted)
	assert.Empty(t, groups.groups[g1].Members)

	got, err := svc.GetUser(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Removing an absent person succeeds with zero effect.
	res, err = svc.RemoveUser(ctx, "7654321")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Matched)
	assert.Equal(t, int64(0), res.Deleted)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "1234567")

	job := "Pilot"
	clearance := 3
	updated, err := svc.UpdateUser(ctx, p.ID, UpdatePersonInput{Job: &job, Clearance: &clearance})
	require.NoError(t, err)
	assert.Equal(t, "Pilot", updated.Job)
	assert.Equal(t, 3, updated.Clearance)
	assert.Equal(t, "Avi", updated.FirstName)

	blank := " "
	_, err = svc.UpdateUser(ctx, p.ID, UpdatePersonInput{FirstName: &blank})
	assert.True(t, errs.IsValidation(err))

	negative := -1
	_, err = svc.UpdateUser(ctx, p.ID, UpdatePersonInput{Clearance: &negative})
	assert.True(t, errs.IsValidation(err))

	_, err = svc.UpdateUser(ctx, "7654321", UpdatePersonInput{Job: &job})
	assert.True(t, errs.IsNotFound(err))
}

func TestGetUpdatedFromWindow(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	mustCreatePerson(t, svc, "1000001")
	t1 := repo.now

	repo.tick()
	mustCreatePerson(t, svc, "1000002")

	repo.tick()
	mustCreatePerson(t, svc, "1000003")
	t3 := repo.now

	repo.tick()
	mustCreatePerson(t, svc, "1000004")

	// Strict lower bound, inclusive upper, creation order.
	got, err := svc.GetUpdatedFrom(ctx, t1, t3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1000002", got[0].ID)
	assert.Equal(t, "1000003", got[1].ID)

	// Updates pull older records back into later windows.
	repo.tick()
	job := "Analyst"
	_, err = svc.UpdateUser(ctx, "1000001", UpdatePersonInput{Job: &job})
	require.NoError(t, err)

	got, err = svc.GetUpdatedFrom(ctx, t3, repo.now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1000001", got[0].ID)
	assert.Equal(t, "1000004", got[1].ID)
}

func TestGetGroupMembersOverSubtree(t *testing.T) {
	svc, _, groups := newTestService()
	ctx := context.Background()

	a1 := groups.add("Field Team")
	a := groups.add("Operations", a1)
	b1 := groups.add("Analysis")
	b2 := groups.add("Signals")
	b := groups.add("Intelligence", b1, b2)
	c := groups.add("Logistics")
	root := groups.add("Headquarters", a, b, c)

	// Second, disconnected tree; its member must never leak in.
	other := groups.add("Other Org")

	placements := map[string]primitive.ObjectID{
		"1000001": a,
		"1000002": a,
		"1000003": b,
		"1000004": a1,
		"1000005": b1,
		"1000006": b2,
		"1000007": b2,
		"1000008": c,
	}
	for id, target := range placements {
		p, err := svc.CreateUser(ctx, &Person{ID: id, FirstName: "Test", LastName: "Person"})
		require.NoError(t, err)
		require.NoError(t, svc.Assign(ctx, p.ID, target))
	}
	outsider, err := svc.CreateUser(ctx, &Person{ID: "2000001", FirstName: "Out", LastName: "Sider"})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(ctx, outsider.ID, other))

	members, err := svc.GetGroupMembers(ctx, root)
	require.NoError(t, err)
	require.Len(t, members, 8)

	var ids []string
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{
		"1000001", "1000002", "1000003", "1000004",
		"1000005", "1000006", "1000007", "1000008",
	}, ids)

	// A leaf subtree is just its own members.
	members, err = svc.GetGroupMembers(ctx, b2)
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = svc.GetGroupMembers(ctx, primitive.NewObjectID())
	assert.True(t, errs.IsNotFound(err))
}
