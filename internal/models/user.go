package models

import "time"

// Profile is the public user document stored under "user:<id>".
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	Avatar      string    `json:"avatar"`
	IsVerified  bool      `json:"isVerified"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Credential holds the login secret, stored under "auth:<email>".
// It never leaves the identity package.
type Credential struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProfileView is a Profile enriched with counters for the profile endpoint.
type ProfileView struct {
	Profile
	VideosCount    int `json:"videosCount"`
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}
