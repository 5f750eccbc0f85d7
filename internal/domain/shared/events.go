package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are published after the transaction that
// produced them has committed.
const (
	// Profile events
	EventProfileRegistered EventType = "profile.registered"
	EventProfileUpdated    EventType = "profile.updated"
	EventProfileDeleted    EventType = "profile.deleted"

	// Content events
	EventQuestionCreated   EventType = "question.created"
	EventQuestionUpdated   EventType = "question.updated"
	EventQuestionDeleted   EventType = "question.deleted"
	EventAnswerSubmitted   EventType = "answer.submitted"
	EventAnswerUpdated     EventType = "answer.updated"
	EventAnswerDeleted     EventType = "answer.deleted"
	EventArticleCreated    EventType = "article.created"
	EventArticleUpdated    EventType = "article.updated"
	EventArticleDeleted    EventType = "article.deleted"
	EventCredentialCreated EventType = "credential.created"
	EventCredentialUpdated EventType = "credential.updated"
	EventCredentialDeleted EventType = "credential.deleted"
	EventTechnologyChanged EventType = "technology.changed"

	// Acceptance and verification events
	EventAnswerAccepted     EventType = "answer.accepted"
	EventAnswerRevoked      EventType = "answer.revoked"
	EventCredentialVerified EventType = "credential.verified"
	EventCredentialRevoked  EventType = "credential.revoked"

	// Reputation events
	EventReputationChanged  EventType = "reputation.changed"
	EventLevelChanged       EventType = "reputation.level_changed"
	EventProfessionalChange EventType = "reputation.professional_changed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Content Events
// ═══════════════════════════════════════════════════════════════════════════

// ContentEvent is emitted when a profile-owned entity is created, updated or
// deleted. ParentID is the question of an answer and empty otherwise.
type ContentEvent struct {
	BaseEvent
	OwnerID  string `json:"owner_id"`
	ParentID string `json:"parent_id,omitempty"`
}

// Payload implements Event interface.
func (e ContentEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"id":       e.AggregateId,
		"owner_id": e.OwnerID,
	}
	if e.ParentID != "" {
		p["parent_id"] = e.ParentID
	}
	return p
}

// NewContentEvent creates a new ContentEvent.
func NewContentEvent(eventType EventType, id, ownerID, parentID string) ContentEvent {
	return ContentEvent{
		BaseEvent: NewBaseEvent(eventType, id),
		OwnerID:   ownerID,
		ParentID:  parentID,
	}
}

// AnswerAcceptanceEvent is emitted when a question owner accepts or revokes
// an answer.
type AnswerAcceptanceEvent struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	AcceptedBy string `json:"accepted_by"`
}

// Payload implements Event interface.
func (e AnswerAcceptanceEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"answer_id":   e.AggregateId,
		"question_id": e.QuestionID,
		"author_id":   e.AuthorID,
		"accepted_by": e.AcceptedBy,
	}
}

// NewAnswerAcceptanceEvent creates an accepted or revoked event.
func NewAnswerAcceptanceEvent(accepted bool, answerID, questionID, authorID, by string) AnswerAcceptanceEvent {
	eventType := EventAnswerRevoked
	if accepted {
		eventType = EventAnswerAccepted
	}
	return AnswerAcceptanceEvent{
		BaseEvent:  NewBaseEvent(eventType, answerID),
		QuestionID: questionID,
		AuthorID:   authorID,
		AcceptedBy: by,
	}
}

// CredentialVerificationEvent is emitted when an administrator verifies or
// revokes a credential.
type CredentialVerificationEvent struct {
	BaseEvent
	ProfileID  string `json:"profile_id"`
	Experience string `json:"experience"`
	VerifiedBy string `json:"verified_by"`
}

// Payload implements Event interface.
func (e CredentialVerificationEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"credential_id": e.AggregateId,
		"profile_id":    e.ProfileID,
		"experience":    e.Experience,
		"verified_by":   e.VerifiedBy,
	}
}

// NewCredentialVerificationEvent creates a verified or revoked event.
func NewCredentialVerificationEvent(verified bool, credentialID, profileID, experience, by string) CredentialVerificationEvent {
	eventType := EventCredentialRevoked
	if verified {
		eventType = EventCredentialVerified
	}
	return CredentialVerificationEvent{
		BaseEvent:  NewBaseEvent(eventType, credentialID),
		ProfileID:  profileID,
		Experience: experience,
		VerifiedBy: by,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reputation Events
// ═══════════════════════════════════════════════════════════════════════════

// ReputationChangedEvent is emitted when a profile's score changes.
type ReputationChangedEvent struct {
	BaseEvent
	Delta     int    `json:"delta"`
	NewScore  int    `json:"new_score"`
	Reason    string `json:"reason"`
	SubjectID string `json:"subject_id"`
}

// Payload implements Event interface.
func (e ReputationChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"profile_id": e.AggregateId,
		"delta":      e.Delta,
		"new_score":  e.NewScore,
		"reason":     e.Reason,
		"subject_id": e.SubjectID,
	}
}

// NewReputationChangedEvent creates a new ReputationChangedEvent.
func NewReputationChangedEvent(profileID string, delta, newScore int, reason, subjectID string) ReputationChangedEvent {
	return ReputationChangedEvent{
		BaseEvent: NewBaseEvent(EventReputationChanged, profileID),
		Delta:     delta,
		NewScore:  newScore,
		Reason:    reason,
		SubjectID: subjectID,
	}
}

// LevelChangedEvent is emitted when a score change crosses a level threshold.
type LevelChangedEvent struct {
	BaseEvent
	OldLevel string `json:"old_level"`
	NewLevel string `json:"new_level"`
}

// Payload implements Event interface.
func (e LevelChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"profile_id": e.AggregateId,
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
	}
}

// NewLevelChangedEvent creates a new LevelChangedEvent.
func NewLevelChangedEvent(profileID, oldLevel, newLevel string) LevelChangedEvent {
	return LevelChangedEvent{
		BaseEvent: NewBaseEvent(EventLevelChanged, profileID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// ProfessionalChangedEvent is emitted when the professional flag flips.
type ProfessionalChangedEvent struct {
	BaseEvent
	IsProfessional bool `json:"is_professional"`
}

// Payload implements Event interface.
func (e ProfessionalChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"profile_id":      e.AggregateId,
		"is_professional": e.IsProfessional,
	}
}

// NewProfessionalChangedEvent creates a new ProfessionalChangedEvent.
func NewProfessionalChangedEvent(profileID string, isProfessional bool) ProfessionalChangedEvent {
	return ProfessionalChangedEvent{
		BaseEvent:      NewBaseEvent(EventProfessionalChange, profileID),
		IsProfessional: isProfessional,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
