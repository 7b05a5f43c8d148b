package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// UserRepository abstracts profile and subscription persistence.
type UserRepository interface {
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, profile models.Profile) error
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	Subscriptions(ctx context.Context, userID string) ([]string, error)
	ToggleSubscription(ctx context.Context, userID, targetUserID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
}

// UserRepo is a document-store implementation of UserRepository.
type UserRepo struct {
	store kvstore.Store
	locks *kvstore.KeyedMutex
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(store kvstore.Store, locks *kvstore.KeyedMutex) *UserRepo {
	return &UserRepo{store: store, locks: locks}
}

func profileKey(userID string) string       { return "user:" + userID }
func subscriptionsKey(userID string) string { return "subscriptions:" + userID }

func (r *UserRepo) CreateProfile(ctx context.Context, profile models.Profile) error {
	return kvstore.SetJSON(ctx, r.store, profileKey(profile.ID), profile)
}

func (r *UserRepo) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := kvstore.GetJSON(ctx, r.store, profileKey(userID), &profile)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

func (r *UserRepo) SaveProfile(ctx context.Context, profile models.Profile) error {
	return kvstore.SetJSON(ctx, r.store, profileKey(profile.ID), profile)
}

// UpdateProfile merges updates into the stored document and writes it back.
// Identity and role fields cannot be changed through this path.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (models.Profile, error) {
	key := profileKey(userID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Profile{}, err
	}
	for field, value := range updates {
		switch field {
		case "id", "email", "isAdmin", "isVerified", "createdAt":
			continue
		}
		doc[field] = value
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return models.Profile{}, err
	}
	if err := r.store.Set(ctx, key, merged); err != nil {
		return models.Profile{}, err
	}

	var profile models.Profile
	if err := json.Unmarshal(merged, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *UserRepo) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	raws, err := r.store.GetByPrefix(ctx, "user:")
	if err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(raws))
	for _, raw := range raws {
		var profile models.Profile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (r *UserRepo) Subscriptions(ctx context.Context, userID string) ([]string, error) {
	var subs []string
	err := kvstore.GetJSON(ctx, r.store, subscriptionsKey(userID), &subs)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, nil
	}
	return subs, err
}

// ToggleSubscription subscribes userID to targetUserID, or unsubscribes if
// already subscribed. Returns the resulting subscribed state.
func (r *UserRepo) ToggleSubscription(ctx context.Context, userID, targetUserID string) (bool, error) {
	key := subscriptionsKey(userID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	var subs []string
	err := kvstore.GetJSON(ctx, r.store, key, &subs)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return false, err
	}

	found := false
	next := subs[:0]
	for _, id := range subs {
		if id == targetUserID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, targetUserID)
	}

	if err := kvstore.SetJSON(ctx, r.store, key, next); err != nil {
		return false, err
	}
	return !found, nil
}

// CountFollowers scans every subscription list for userID. Linear in the
// number of users; there is no reverse index.
func (r *UserRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	raws, err := r.store.GetByPrefix(ctx, "subscriptions:")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, raw := range raws {
		var subs []string
		if err := json.Unmarshal(raw, &subs); err != nil {
			continue
		}
		for _, id := range subs {
			if id == userID {
				count++
				break
			}
		}
	}
	return count, nil
}

var _ UserRepository = (*UserRepo)(nil)
