package memory

import (
	"context"
	"sort"
	"time"

	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/shared"
)

type credentialRepo struct {
	s *Store
}

// duplicates reports another credential with the same profile, role and
// institution.
func (d *data) duplicates(c *credential.Credential) bool {
	for _, other := range d.credentials {
		if other.ID != c.ID &&
			other.ProfileID == c.ProfileID &&
			other.Role == c.Role &&
			other.Institution == c.Institution {
			return true
		}
	}
	return false
}

func (r *credentialRepo) Create(ctx context.Context, c *credential.Credential) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.profiles[c.ProfileID]; !ok {
			return shared.ErrProfileNotFound
		}
		if d.duplicates(c) {
			return shared.ErrCredentialDuplicate
		}
		d.credentials[c.ID] = copyCredential(c)
		d.track(c.ID)
		return nil
	})
}

func (r *credentialRepo) GetByID(_ context.Context, id string) (*credential.Credential, error) {
	var out *credential.Credential
	err := r.s.read(func(d *data) error {
		c, ok := d.credentials[id]
		if !ok {
			return shared.ErrCredentialNotFound
		}
		out = copyCredential(c)
		return nil
	})
	return out, err
}

func (r *credentialRepo) Update(ctx context.Context, c *credential.Credential) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.credentials[c.ID]
		if !ok {
			return shared.ErrCredentialNotFound
		}
		if d.duplicates(c) {
			return shared.ErrCredentialDuplicate
		}
		updated := copyCredential(c)
		updated.ProfileID = stored.ProfileID
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		d.credentials[c.ID] = updated
		return nil
	})
}

func (r *credentialRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.credentials[id]; !ok {
			return shared.ErrCredentialNotFound
		}
		delete(d.credentials, id)
		return nil
	})
}

func (r *credentialRepo) ListByProfile(_ context.Context, profileID string) ([]*credential.Credential, error) {
	out := []*credential.Credential{}
	err := r.s.read(func(d *data) error {
		for _, c := range d.credentials {
			if c.ProfileID == profileID {
				out = append(out, copyCredential(c))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.After(out[j].StartDate)
			}
			return d.newerFirst(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *credentialRepo) CountVerifiedRecognized(_ context.Context, profileID string) (int, error) {
	count := 0
	err := r.s.read(func(d *data) error {
		for _, c := range d.credentials {
			if c.ProfileID == profileID && c.IsVerified && c.Experience.IsRecognized() {
				count++
			}
		}
		return nil
	})
	return count, err
}
