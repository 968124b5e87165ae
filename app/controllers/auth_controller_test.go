package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
)

var errNotFound = errors.New("record not found")

type fakeUserRepo struct {
	byFreshbooksID map[int64]*models.User
	created        []*models.User
	updated        []*models.User
	nextID         uint
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.updated = append(f.updated, user)
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	return nil, errNotFound
}

func (f *fakeUserRepo) GetByFreshbooksID(freshbooksID int64) (*models.User, error) {
	if u, ok := f.byFreshbooksID[freshbooksID]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) Count() (int64, error) { return int64(len(f.byFreshbooksID)), nil }

type fakeBusinessRepo struct {
	byFreshbooksID map[int64]*models.Business
	created        []*models.Business
	updated        []*models.Business
	nextID         uint
}

func (f *fakeBusinessRepo) Create(business *models.Business) error {
	f.nextID++
	business.ID = f.nextID
	f.created = append(f.created, business)
	return nil
}

func (f *fakeBusinessRepo) Update(business *models.Business) error {
	f.updated = append(f.updated, business)
	return nil
}

func (f *fakeBusinessRepo) GetByFreshbooksID(freshbooksID int64) (*models.Business, error) {
	if b, ok := f.byFreshbooksID[freshbooksID]; ok {
		return b, nil
	}
	return nil, errNotFound
}

func (f *fakeBusinessRepo) GetByAccountID(accountID string) (*models.Business, error) {
	return nil, errNotFound
}

func (f *fakeBusinessRepo) FirstWithAccountID() (*models.Business, error) {
	return nil, errNotFound
}

type fakeMembershipRepo struct {
	byFreshbooksID map[int64]*models.Membership
	created        []*models.Membership
	updated        []*models.Membership
	nextID         uint
}

func (f *fakeMembershipRepo) Create(membership *models.Membership) error {
	f.nextID++
	membership.ID = f.nextID
	f.created = append(f.created, membership)
	return nil
}

func (f *fakeMembershipRepo) Update(membership *models.Membership) error {
	f.updated = append(f.updated, membership)
	return nil
}

func (f *fakeMembershipRepo) GetByFreshbooksID(freshbooksID int64) (*models.Membership, error) {
	if m, ok := f.byFreshbooksID[freshbooksID]; ok {
		return m, nil
	}
	return nil, errNotFound
}

func newFakeRepos() (*repository.Repositories, *fakeUserRepo, *fakeBusinessRepo, *fakeMembershipRepo) {
	users := &fakeUserRepo{byFreshbooksID: map[int64]*models.User{}}
	businesses := &fakeBusinessRepo{byFreshbooksID: map[int64]*models.Business{}}
	memberships := &fakeMembershipRepo{byFreshbooksID: map[int64]*models.Membership{}}
	repos := &repository.Repositories{
		User:       users,
		Business:   businesses,
		Membership: memberships,
	}
	return repos, users, businesses, memberships
}

func TestReconcileLoginCreatesGraph(t *testing.T) {
	repos, users, businesses, memberships := newFakeRepos()

	accountID := "xAbC12"
	profile := &freshbooks.UserProfile{
		ID:        910,
		FirstName: "Roderic",
		LastName:  "Campbell",
		BusinessMemberships: []freshbooks.MembershipPayload{
			{
				ID:   5001,
				Role: "owner",
				Business: freshbooks.BusinessPayload{
					ID:        77,
					Name:      "Thumbworks",
					AccountID: &accountID,
				},
			},
		},
	}

	user, err := reconcileLogin(repos, profile, "token-1")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, int64(910), user.FreshbooksID)
	assert.Equal(t, "token-1", user.AccessToken)
	assert.Equal(t, "Roderic Campbell", user.DisplayName())
	require.Len(t, users.created, 1)
	require.Len(t, businesses.created, 1)
	assert.Equal(t, "Thumbworks", businesses.created[0].Name)
	require.NotNil(t, businesses.created[0].AccountID)
	assert.Equal(t, accountID, *businesses.created[0].AccountID)
	require.Len(t, memberships.created, 1)
	assert.Equal(t, user.ID, memberships.created[0].UserID)
	assert.Equal(t, businesses.created[0].ID, memberships.created[0].BusinessID)
	assert.Equal(t, "owner", memberships.created[0].Role)
}

func TestReconcileLoginUpdatesExistingUser(t *testing.T) {
	repos, users, businesses, memberships := newFakeRepos()

	users.byFreshbooksID[910] = &models.User{ID: 3, FreshbooksID: 910, AccessToken: "stale"}
	businesses.byFreshbooksID[77] = &models.Business{ID: 8, FreshbooksID: 77, Name: "Old Name"}
	memberships.byFreshbooksID[5001] = &models.Membership{ID: 12, FreshbooksID: 5001, UserID: 3, BusinessID: 8}

	profile := &freshbooks.UserProfile{
		ID:        910,
		FirstName: "Roderic",
		LastName:  "Campbell",
		BusinessMemberships: []freshbooks.MembershipPayload{
			{
				ID:   5001,
				Role: "admin",
				Business: freshbooks.BusinessPayload{
					ID:   77,
					Name: "Thumbworks LLC",
				},
			},
		},
	}

	user, err := reconcileLogin(repos, profile, "token-2")
	require.NoError(t, err)

	// no new rows, everything updated in place
	assert.Empty(t, users.created)
	assert.Empty(t, businesses.created)
	assert.Empty(t, memberships.created)
	require.Len(t, users.updated, 1)
	require.Len(t, businesses.updated, 1)
	require.Len(t, memberships.updated, 1)

	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "token-2", user.AccessToken)
	assert.Equal(t, "Thumbworks LLC", businesses.updated[0].Name)
	assert.Equal(t, "admin", memberships.updated[0].Role)
}

func TestReconcileLoginRejectsProfileWithoutMemberships(t *testing.T) {
	repos, users, _, _ := newFakeRepos()

	profile := &freshbooks.UserProfile{ID: 910, FirstName: "Roderic"}

	_, err := reconcileLogin(repos, profile, "token-1")
	require.Error(t, err)
	assert.Empty(t, users.created)
}

func TestGenerateOAuthState(t *testing.T) {
	state, err := generateOAuthState(24)
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.NotContains(t, state, "=")
	assert.NotContains(t, state, "+")
	assert.NotContains(t, state, "/")

	other, err := generateOAuthState(24)
	require.NoError(t, err)
	assert.NotEqual(t, state, other)

	// undersized requests are padded up to a usable minimum
	short, err := generateOAuthState(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(short), 16)
}
