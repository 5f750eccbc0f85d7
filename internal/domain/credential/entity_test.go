package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

var today = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func validFields() Fields {
	return Fields{
		Role:        "Backend Engineer",
		Type:        TypeProfessional,
		Experience:  reputation.TierMid,
		Institution: "Acme",
		StartDate:   time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewCredential(t *testing.T) {
	c, err := NewCredential("p1", validFields(), today)
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "p1", c.OwnerID())
	assert.False(t, c.IsVerified)
	assert.Equal(t, reputation.TierMid, c.Experience)
}

func TestNewCredential_NormalizesEnums(t *testing.T) {
	f := validFields()
	f.Type = " pro "
	f.Experience = "sr"

	c, err := NewCredential("p1", f, today)
	require.NoError(t, err)
	assert.Equal(t, TypeProfessional, c.Type)
	assert.Equal(t, reputation.TierSenior, c.Experience)
}

func TestNewCredential_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *Fields)
		want   error
	}{
		{"unknown type", func(f *Fields) { f.Type = "XYZ" }, shared.ErrUnknownCredentialType},
		{"unknown tier", func(f *Fields) { f.Experience = "CEO" }, shared.ErrUnknownExperience},
		{"start in future", func(f *Fields) { f.StartDate = today.AddDate(0, 0, 1) }, shared.ErrStartDateInFuture},
		{"start after end", func(f *Fields) {
			end := f.StartDate.AddDate(0, -1, 0)
			f.EndDate = &end
		}, shared.ErrStartAfterEnd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			tc.mutate(&f)
			_, err := NewCredential("p1", f, today)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestNewCredential_StartTodayIsAllowed(t *testing.T) {
	f := validFields()
	f.StartDate = today
	_, err := NewCredential("p1", f, today)
	assert.NoError(t, err)
}

func TestEdit_VerifiedIsConflict(t *testing.T) {
	c, err := NewCredential("p1", validFields(), today)
	require.NoError(t, err)

	assert.True(t, c.SetVerified(true))
	assert.False(t, c.SetVerified(true))

	f := validFields()
	f.Role = "Staff Engineer"
	err = c.Edit(f, today)
	assert.ErrorIs(t, err, shared.ErrCredentialVerified)
	assert.True(t, shared.IsConflict(err))
	assert.Equal(t, "Backend Engineer", c.Role)

	assert.True(t, c.SetVerified(false))
	require.NoError(t, c.Edit(f, today))
	assert.Equal(t, "Staff Engineer", c.Role)
}
