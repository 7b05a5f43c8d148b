package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
	"shortkat/internal/repositories"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("email, password and username are required")
)

// Service owns account creation and password verification. Credentials live
// under "auth:<email>", separate from the public profile document.
type Service struct {
	store  kvstore.Store
	users  repositories.UserRepository
	issuer TokenIssuer
	locks  *kvstore.KeyedMutex
	now    func() time.Time
}

// NewService constructs an identity Service.
func NewService(store kvstore.Store, users repositories.UserRepository, issuer TokenIssuer, locks *kvstore.KeyedMutex) *Service {
	return &Service{store: store, users: users, issuer: issuer, locks: locks, now: time.Now}
}

func credentialKey(email string) string {
	return "auth:" + strings.ToLower(email)
}

// SignupResult is what a successful registration yields.
type SignupResult struct {
	User        models.Profile
	AccessToken string
	IsFirstUser bool
}

// Signup registers a new account and returns a token. The first user ever
// registered becomes admin and verified.
func (s *Service) Signup(ctx context.Context, email, password, username, displayName string) (SignupResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return SignupResult{}, ErrMissingFields
	}

	key := credentialKey(email)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if _, err := s.store.Get(ctx, key); err == nil {
		return SignupResult{}, ErrEmailTaken
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return SignupResult{}, err
	}

	existing, err := s.users.ListProfiles(ctx)
	if err != nil {
		return SignupResult{}, err
	}
	isFirstUser := len(existing) == 0

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignupResult{}, err
	}

	now := s.now().UTC()
	userID := uuid.NewString()

	credential := models.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := kvstore.SetJSON(ctx, s.store, key, credential); err != nil {
		return SignupResult{}, err
	}

	profile := models.Profile{
		ID:          userID,
		Email:       email,
		Username:    username,
		DisplayName: displayName,
		IsVerified:  isFirstUser,
		IsAdmin:     isFirstUser,
		CreatedAt:   now,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return SignupResult{}, err
	}

	token, err := s.issuer.Issue(userID)
	if err != nil {
		return SignupResult{}, err
	}

	return SignupResult{User: profile, AccessToken: token, IsFirstUser: isFirstUser}, nil
}

// Signin verifies the password and returns a fresh token with the profile.
func (s *Service) Signin(ctx context.Context, email, password string) (models.Profile, string, error) {
	email = strings.TrimSpace(email)

	var credential models.Credential
	err := kvstore.GetJSON(ctx, s.store, credentialKey(email), &credential)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Profile{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.Profile{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)) != nil {
		return models.Profile{}, "", ErrInvalidCredentials
	}

	profile, err := s.users.GetProfile(ctx, credential.UserID)
	if err != nil {
		return models.Profile{}, "", err
	}

	token, err := s.issuer.Issue(credential.UserID)
	if err != nil {
		return models.Profile{}, "", err
	}
	return profile, token, nil
}
