package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/auth"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// InputError reports a request the service refuses as is. Message is shown
// to the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// CredentialsError reports a failed sign-in.
type CredentialsError struct {
	Message string
}

func (e *CredentialsError) Error() string { return e.Message }

// Service is the business logic layer of the store. It owns the
// repositories and the token issuer.
type Service struct {
	logger     *logrus.Logger
	tokens     *auth.Issuer
	Users      repository.UserRepository
	Recipients repository.RecipientRepository
	Ideas      repository.GiftIdeaRepository
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, tokens *auth.Issuer,
	users repository.UserRepository,
	recipients repository.RecipientRepository,
	ideas repository.GiftIdeaRepository,
) *Service {
	return &Service{
		logger: logger, tokens: tokens,
		Users: users, Recipients: recipients, Ideas: ideas,
	}
}

// SignUp registers a user and returns its first session.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	if msg := auth.SignUpProblem(email, password); msg != "" {
		return nil, &InputError{Message: msg}
	}
	email = auth.NormalizeEmail(email)

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if existing != nil {
		return nil, &InputError{Message: auth.MsgAlreadyRegistered}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &InputError{Message: auth.MsgAlreadyRegistered}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Registered new user")
	return s.session(user)
}

// SignIn checks the credentials and returns a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.Users.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if user == nil || auth.CheckPassword(user.PasswordHash, password) != nil {
		return nil, &CredentialsError{Message: auth.MsgInvalidCredentials}
	}
	return s.session(user)
}

// Refresh exchanges a valid token for a new one.
func (s *Service) Refresh(ctx context.Context, token string) (*models.Session, error) {
	userID, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return s.session(user)
}

// Authenticate returns the user id carried by a valid token.
func (s *Service) Authenticate(token string) (int64, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return id, nil
}

func (s *Service) session(user *models.User) (*models.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.Session{User: *user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// ListRecipients returns the recipients of a user.
func (s *Service) ListRecipients(ctx context.Context, userID int64) ([]*models.Recipient, error) {
	recipients, err := s.Recipients.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if recipients == nil {
		recipients = []*models.Recipient{}
	}
	return recipients, nil
}

// GetRecipient returns one recipient of a user.
func (s *Service) GetRecipient(ctx context.Context, userID, id int64) (*models.Recipient, error) {
	r, err := s.Recipients.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

// CreateRecipient stores a new recipient with trimmed fields.
func (s *Service) CreateRecipient(ctx context.Context, userID int64, in models.RecipientInput) (*models.Recipient, error) {
	in, err := normalizeRecipient(in)
	if err != nil {
		return nil, err
	}
	return s.Recipients.Create(ctx, &models.Recipient{UserID: userID, Name: in.Name, Occasion: in.Occasion})
}

// UpdateRecipient replaces the name and occasion of a recipient.
func (s *Service) UpdateRecipient(ctx context.Context, userID, id int64, in models.RecipientInput) error {
	in, err := normalizeRecipient(in)
	if err != nil {
		return err
	}
	return notFound(s.Recipients.Update(ctx, userID, id, in))
}

// DeleteRecipient removes a recipient. The database cascades the delete to
// its gift ideas.
func (s *Service) DeleteRecipient(ctx context.Context, userID, id int64) error {
	return notFound(s.Recipients.Delete(ctx, userID, id))
}

// ListIdeas returns the ideas of one recipient, newest first.
func (s *Service) ListIdeas(ctx context.Context, userID, recipientID int64) ([]*models.GiftIdea, error) {
	ideas, err := s.Ideas.GetByRecipient(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		ideas = []*models.GiftIdea{}
	}
	return ideas, nil
}

// IdeaRecipientIDs returns one recipient id per idea of the user.
func (s *Service) IdeaRecipientIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.Ideas.GetRecipientIDs(ctx, userID)
}

// CreateIdea stores a new idea for a recipient owned by the user.
func (s *Service) CreateIdea(ctx context.Context, userID int64, in models.IdeaInput) (*models.GiftIdea, error) {
	in, err := normalizeIdea(in)
	if err != nil {
		return nil, err
	}

	owner, err := s.Recipients.GetByID(ctx, userID, in.RecipientID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrNotFound
	}

	return s.Ideas.Create(ctx, &models.GiftIdea{RecipientID: in.RecipientID, Text: in.Text, Note: in.Note})
}

// UpdateIdea replaces the text and note of an idea.
func (s *Service) UpdateIdea(ctx context.Context, userID, id int64, in models.IdeaInput) error {
	in, err := normalizeIdea(in)
	if err != nil {
		return err
	}
	return notFound(s.Ideas.Update(ctx, userID, id, in))
}

// DeleteIdea removes an idea.
func (s *Service) DeleteIdea(ctx context.Context, userID, id int64) error {
	return notFound(s.Ideas.Delete(ctx, userID, id))
}

func normalizeRecipient(in models.RecipientInput) (models.RecipientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Occasion != nil {
		in.Occasion = models.OptionalString(*in.Occasion)
	}
	if in.Name == "" {
		return in, &InputError{Message: "name is required"}
	}
	return in, nil
}

func normalizeIdea(in models.IdeaInput) (models.IdeaInput, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Note != nil {
		in.Note = models.OptionalString(*in.Note)
	}
	if in.Text == "" {
		return in, &InputError{Message: "text is required"}
	}
	return in, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
