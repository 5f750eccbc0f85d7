// Package credential содержит доменную модель подтверждённого опыта
// (профессиональный опыт или образование).
//
// Жизненный цикл:
//
//	Unverified ──(админ)──▶ Verified ──(админ)──▶ Unverified
//	     │                      │
//	     └──────── delete ──────┘
//
// Подтверждённую запись нельзя редактировать, только отозвать или удалить.
package credential

import (
	"strings"
	"time"

	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// Type - вид записи.
type Type string

const (
	// TypeProfessional - профессиональный опыт.
	TypeProfessional Type = "PRO"
	// TypeGraduation - образование.
	TypeGraduation Type = "GRA"
)

// IsValid проверяет, что вид записи известен.
func (t Type) IsValid() bool {
	return t == TypeProfessional || t == TypeGraduation
}

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIAL ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Credential - запись об опыте профиля.
// Уникальна по (ProfileID, Role, Institution).
type Credential struct {
	ID          string
	ProfileID   string
	Role        string
	Type        Type
	Experience  reputation.Tier
	Institution string
	StartDate   time.Time
	EndDate     *time.Time
	IsVerified  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields - редактируемые поля записи.
type Fields struct {
	Role        string
	Type        Type
	Experience  reputation.Tier
	Institution string
	StartDate   time.Time
	EndDate     *time.Time
}

// NewCredential создаёт неподтверждённую запись.
// today - текущая дата в часовом поясе сервиса, используется для проверки
// даты начала.
func NewCredential(profileID string, f Fields, today time.Time) (*Credential, error) {
	if profileID == "" {
		return nil, shared.Invalid("credential", "Create", "profile is required")
	}
	f, err := f.normalize(today)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Credential{
		ID:          shared.NewID(),
		ProfileID:   profileID,
		Role:        f.Role,
		Type:        f.Type,
		Experience:  f.Experience,
		Institution: f.Institution,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		IsVerified:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// OwnerID возвращает профиль-владелец записи.
func (c *Credential) OwnerID() string {
	return c.ProfileID
}

// Fields возвращает текущие редактируемые поля.
func (c *Credential) Fields() Fields {
	return Fields{
		Role:        c.Role,
		Type:        c.Type,
		Experience:  c.Experience,
		Institution: c.Institution,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
	}
}

// Edit заменяет поля записи.
// Возвращает ErrCredentialVerified для подтверждённой записи.
func (c *Credential) Edit(f Fields, today time.Time) error {
	if err := reputation.CheckCredentialEdit(c.IsVerified); err != nil {
		return err
	}
	f, err := f.normalize(today)
	if err != nil {
		return err
	}
	c.Role = f.Role
	c.Type = f.Type
	c.Experience = f.Experience
	c.Institution = f.Institution
	c.StartDate = f.StartDate
	c.EndDate = f.EndDate
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetVerified меняет статус подтверждения и сообщает, изменился ли он.
func (c *Credential) SetVerified(v bool) bool {
	if c.IsVerified == v {
		return false
	}
	c.IsVerified = v
	c.UpdatedAt = time.Now().UTC()
	return true
}

func (f Fields) normalize(today time.Time) (Fields, error) {
	f.Role = strings.TrimSpace(f.Role)
	f.Institution = strings.TrimSpace(f.Institution)
	f.Type = Type(strings.ToUpper(strings.TrimSpace(string(f.Type))))
	f.Experience = reputation.Tier(strings.ToUpper(strings.TrimSpace(string(f.Experience))))

	if f.Role == "" {
		return f, shared.Invalid("credential", "Validate", "role is required")
	}
	if f.Institution == "" {
		return f, shared.Invalid("credential", "Validate", "institution is required")
	}
	if !f.Type.IsValid() {
		return f, shared.ErrUnknownCredentialType
	}
	if !f.Experience.IsRecognized() {
		return f, shared.ErrUnknownExperience
	}
	if f.StartDate.IsZero() {
		return f, shared.Invalid("credential", "Validate", "start date is required")
	}

	f.StartDate = dateOnly(f.StartDate)
	if f.StartDate.After(dateOnly(today)) {
		return f, shared.ErrStartDateInFuture
	}
	if f.EndDate != nil {
		end := dateOnly(*f.EndDate)
		if f.StartDate.After(end) {
			return f, shared.ErrStartAfterEnd
		}
		f.EndDate = &end
	}
	return f, nil
}

// dateOnly отбрасывает время, сохраняя календарную дату.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
