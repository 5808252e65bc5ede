package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWhitelistFixture(t *testing.T) (IPWhitelistService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewIPWhitelistService(repository.NewIPWhitelistRepository(db)), db
}

func TestWhitelistAdd_NormalizesNetwork(t *testing.T) {
	svc, _ := newWhitelistFixture(t)
	ctx := context.Background()

	// Host bits set: must be stored in canonical masked form.
	entry, err := svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "192.168.1.17/24", OrganizationName: "Test University"})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.0/24", entry.IPNetwork)
	assert.Equal(t, "Test University", entry.OrganizationName)
}

func TestWhitelistAdd_InvalidAndDuplicate(t *testing.T) {
	svc, _ := newWhitelistFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "not-a-network"})
	assert.ErrorIs(t, err, ErrInvalidNetwork)

	_, err = svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "10.0.0.0/8"})
	require.NoError(t, err)

	// Same network in non-canonical form is still a duplicate.
	_, err = svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "10.1.2.3/8"})
	assert.ErrorIs(t, err, ErrDuplicateNetwork)
}

func TestIsWhitelisted(t *testing.T) {
	svc, db := newWhitelistFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "192.168.1.0/24"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "2001:db8::/32"})
	require.NoError(t, err)

	// A malformed row must be skipped, not break the scan.
	require.NoError(t, db.Create(&model.IPWhitelistEntry{IPNetwork: "garbage"}).Error)

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{name: "inside v4 range", ip: "192.168.1.42", want: true},
		{name: "outside v4 range", ip: "192.168.2.42", want: false},
		{name: "inside v6 range", ip: "2001:db8::1", want: true},
		{name: "outside v6 range", ip: "2001:db9::1", want: false},
		{name: "unparseable fails closed", ip: "not-an-ip", want: false},
		{name: "empty fails closed", ip: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsWhitelisted(ctx, tt.ip)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhitelistUpdate(t *testing.T) {
	svc, _ := newWhitelistFixture(t)
	ctx := context.Background()

	entry, err := svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "10.0.0.0/8", OrganizationName: "Old"})
	require.NoError(t, err)

	network := "172.16.5.5/12"
	label := "New"
	updated, err := svc.Update(ctx, entry.ID, UpdateWhitelistRequest{IPNetwork: &network, OrganizationName: &label})
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.0/12", updated.IPNetwork)
	assert.Equal(t, "New", updated.OrganizationName)

	// Label-only update leaves the network untouched.
	labelOnly := "Renamed"
	updated, err = svc.Update(ctx, entry.ID, UpdateWhitelistRequest{OrganizationName: &labelOnly})
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.0/12", updated.IPNetwork)
	assert.Equal(t, "Renamed", updated.OrganizationName)

	bad := "nope"
	_, err = svc.Update(ctx, entry.ID, UpdateWhitelistRequest{IPNetwork: &bad})
	assert.ErrorIs(t, err, ErrInvalidNetwork)

	_, err = svc.Update(ctx, 9999, UpdateWhitelistRequest{OrganizationName: &label})
	assert.ErrorIs(t, err, ErrWhitelistNotFound)
}

func TestWhitelistDelete(t *testing.T) {
	svc, _ := newWhitelistFixture(t)
	ctx := context.Background()

	entry, err := svc.Add(ctx, CreateWhitelistRequest{IPNetwork: "10.0.0.0/8"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.ErrorIs(t, svc.Delete(ctx, entry.ID), ErrWhitelistNotFound)

	ok, err := svc.IsWhitelisted(ctx, "10.1.1.1")
	require.NoError(t, err)
	assert.False(t, ok)
}
