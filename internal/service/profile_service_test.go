package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap/zaptest"

	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

// memRepo is an in-memory ProfileRepository keyed by email.
type memRepo struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
	calls    int
}

func newMemRepo() *memRepo { return &memRepo{profiles: map[string]model.Profile{}} }

func (r *memRepo) FindByEmail(_ context.Context, email string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	p, ok := r.profiles[email]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return &p, nil
}

func (r *memRepo) Create(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.profiles[p.Email]; ok {
		return model.ErrDuplicateEmail
	}
	p.ID = bson.NewObjectID()
	r.profiles[p.Email] = *p
	return nil
}

func (r *memRepo) UpsertByEmail(_ context.Context, u model.ProfileUpdate, now time.Time) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	p, ok := r.profiles[u.Email]
	if !ok {
		p = model.Profile{ID: bson.NewObjectID(), Email: u.Email, CreatedAt: now}
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	p.UpdatedAt = now
	r.profiles[u.Email] = p
	return &p, nil
}

func (r *memRepo) List(context.Context) ([]model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []model.Profile{}
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockRepo) Create(ctx context.Context, p *model.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepo) UpsertByEmail(ctx context.Context, u model.ProfileUpdate, now time.Time) (*model.Profile, error) {
	args := m.Called(ctx, u, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockRepo) List(ctx context.Context) ([]model.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.got {
		out = append(out, e.Type)
	}
	return out
}

var demo = model.DemoProfile{
	Name:  model.DefaultDemoName,
	Email: model.DefaultDemoEmail,
	Bio:   model.DefaultDemoBio,
}

func strPtr(s string) *string { return &s }

// newTestService returns a service whose clock advances one second per call.
func newTestService(t *testing.T, repo ProfileRepository) (*ProfileService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewProfileService(repo, pub, demo, zaptest.NewLogger(t))

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, pub
}

func TestFetchOrCreateDemo_CreatesOnceThenReturnsSame(t *testing.T) {
	repo := newMemRepo()
	svc, pub := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.FetchOrCreateDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDemoName, first.Name)
	assert.Equal(t, model.DefaultDemoEmail, first.Email)
	assert.Equal(t, model.DefaultDemoBio, first.Bio)
	assert.False(t, first.ID.IsZero())

	second, err := svc.FetchOrCreateDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []string{events.TypeProfileCreated}, pub.Types())
}

func TestFetchOrCreateDemo_LosesCreateRace(t *testing.T) {
	repo := new(MockRepo)
	svc, pub := newTestService(t, repo)
	ctx := context.Background()

	winner := &model.Profile{ID: bson.NewObjectID(), Email: model.DefaultDemoEmail, Name: "Anna Samson"}
	repo.On("FindByEmail", ctx, model.DefaultDemoEmail).Return(nil, model.ErrProfileNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*model.Profile")).Return(model.ErrDuplicateEmail).Once()
	repo.On("FindByEmail", ctx, model.DefaultDemoEmail).Return(winner, nil).Once()

	got, err := svc.FetchOrCreateDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, winner, got)
	assert.Empty(t, pub.Types())
	repo.AssertExpectations(t)
}

func TestFetchOrCreateDemo_PropagatesLookupFailure(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, model.DefaultDemoEmail).Return(nil, model.ErrUnavailable).Once()

	_, err := svc.FetchOrCreateDemo(ctx)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpsert_RequiresEmail(t *testing.T) {
	inputs := []model.ProfileUpdate{
		{},
		{Name: strPtr("A")},
		{Name: strPtr("A"), Bio: strPtr("x")},
		{Bio: strPtr("")},
	}

	for _, in := range inputs {
		repo := newMemRepo()
		svc, pub := newTestService(t, repo)

		_, err := svc.Upsert(context.Background(), in)

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Email is required", ve.Fields["email"])
		assert.Zero(t, repo.calls, "validation must fail before reaching the store")
		assert.Empty(t, pub.Types())
	}
}

func TestUpsert_CreatesThenUpdatesWithoutDuplicates(t *testing.T) {
	repo := newMemRepo()
	svc, pub := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, model.ProfileUpdate{Email: "a@b.com", Name: strPtr("A"), Bio: strPtr("x")})
	require.NoError(t, err)

	updated, err := svc.Upsert(ctx, model.ProfileUpdate{Email: "a@b.com", Name: strPtr("A"), Bio: strPtr("y")})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "y", updated.Bio)
	assert.Equal(t, "a@b.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "y", all[0].Bio)

	assert.Equal(t, []string{events.TypeProfileCreated, events.TypeProfileUpdated}, pub.Types())
}

func TestUpsert_EmailStaysUniqueAcrossSequences(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	emails := []string{"a@b.com", "c@d.com", "a@b.com", "e@f.com", "c@d.com", "a@b.com"}
	for i, e := range emails {
		_, err := svc.Upsert(ctx, model.ProfileUpdate{Email: e, Bio: strPtr(string(rune('a' + i)))})
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.Email], "duplicate profile for %s", p.Email)
		seen[p.Email] = true
	}
}

func TestUpsert_RetriesOnceAfterDuplicateKey(t *testing.T) {
	repo := new(MockRepo)
	svc, pub := newTestService(t, repo)
	ctx := context.Background()

	in := model.ProfileUpdate{Email: "a@b.com", Bio: strPtr("x")}
	stored := &model.Profile{
		Email:     "a@b.com",
		Bio:       "x",
		CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
	}
	repo.On("UpsertByEmail", ctx, in, mock.AnythingOfType("time.Time")).Return(nil, model.ErrDuplicateEmail).Once()
	repo.On("UpsertByEmail", ctx, in, mock.AnythingOfType("time.Time")).Return(stored, nil).Once()

	got, err := svc.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	assert.Equal(t, []string{events.TypeProfileUpdated}, pub.Types())
	repo.AssertExpectations(t)
}

func TestUpsert_PropagatesUnavailable(t *testing.T) {
	repo := new(MockRepo)
	svc, pub := newTestService(t, repo)
	ctx := context.Background()

	in := model.ProfileUpdate{Email: "a@b.com"}
	repo.On("UpsertByEmail", ctx, in, mock.Anything).Return(nil, model.ErrUnavailable).Once()

	_, err := svc.Upsert(ctx, in)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Empty(t, pub.Types())
}

func TestListAll_WrapsErrors(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	boom := errors.New("cursor failed")
	repo.On("List", ctx).Return(nil, boom).Once()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, boom)
}
