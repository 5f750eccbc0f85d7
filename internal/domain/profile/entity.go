// Package profile содержит доменную модель профиля участника DevAsk Hub.
// Профиль объединяет учётную запись (логин, пароль, роль) и публичные данные
// (био, экспертиза, репутация).
package profile

import (
	"strings"
	"time"

	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// MinPasswordLength - минимальная длина пароля при регистрации.
const MinPasswordLength = 8

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - агрегат профиля.
// Поля ReputationScore, Level и IsProfessional производные: их меняет только
// движок репутации через ApplyStanding.
type Profile struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsAdmin      bool

	Bio       string
	AvatarURL string
	Expertise string

	ReputationScore int
	Level           reputation.Level
	IsProfessional  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfileParams - параметры для создания профиля.
type NewProfileParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsAdmin      bool
}

// NewProfile создаёт новый профиль с нулевой репутацией.
func NewProfile(params NewProfileParams) (*Profile, error) {
	username := strings.TrimSpace(params.Username)
	if !shared.IsValidUsername(username) {
		return nil, shared.ErrInvalidUsername
	}
	email := strings.TrimSpace(params.Email)
	if email != "" && !shared.IsValidEmail(email) {
		return nil, shared.ErrInvalidEmail
	}
	if params.PasswordHash == "" {
		return nil, shared.Invalid("profile", "Create", "password hash is required")
	}

	now := time.Now().UTC()
	return &Profile{
		ID:              shared.NewID(),
		Username:        username,
		Email:           email,
		FirstName:       strings.TrimSpace(params.FirstName),
		LastName:        strings.TrimSpace(params.LastName),
		PasswordHash:    params.PasswordHash,
		IsAdmin:         params.IsAdmin,
		ReputationScore: 0,
		Level:           reputation.LevelFor(0),
		IsProfessional:  false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// OwnerID возвращает владельца профиля - сам профиль.
func (p *Profile) OwnerID() string {
	return p.ID
}

// FullName возвращает имя и фамилию через пробел.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Standing возвращает текущее состояние репутации.
func (p *Profile) Standing() reputation.Standing {
	return reputation.Standing{
		Score:          p.ReputationScore,
		Level:          p.Level,
		IsProfessional: p.IsProfessional,
	}
}

// ApplyStanding записывает новое состояние репутации и сообщает,
// изменились ли уровень и профессиональный статус.
func (p *Profile) ApplyStanding(s reputation.Standing) (levelChanged, professionalChanged bool) {
	levelChanged = p.Level != s.Level
	professionalChanged = p.IsProfessional != s.IsProfessional

	p.ReputationScore = s.Score
	p.Level = s.Level
	p.IsProfessional = s.IsProfessional
	p.UpdatedAt = time.Now().UTC()
	return levelChanged, professionalChanged
}

// UpdateParams - изменяемые владельцем поля. nil означает "не менять".
type UpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	Expertise *string
}

// Update применяет частичное обновление профиля.
func (p *Profile) Update(params UpdateParams) error {
	if params.Email != nil {
		email := strings.TrimSpace(*params.Email)
		if email != "" && !shared.IsValidEmail(email) {
			return shared.ErrInvalidEmail
		}
		p.Email = email
	}
	if params.FirstName != nil {
		p.FirstName = strings.TrimSpace(*params.FirstName)
	}
	if params.LastName != nil {
		p.LastName = strings.TrimSpace(*params.LastName)
	}
	if params.Bio != nil {
		p.Bio = *params.Bio
	}
	if params.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*params.AvatarURL)
	}
	if params.Expertise != nil {
		p.Expertise = strings.TrimSpace(*params.Expertise)
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READ MODEL
// ══════════════════════════════════════════════════════════════════════════════

// Stats - счётчики активности профиля для детальной карточки.
type Stats struct {
	ArticlesWritten int `json:"articles_written"`
	AnswersAccepted int `json:"answers_accepted"`
}
