package container_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// memStore satisfies auth.AuthRepo, user.UserRepo and post.PostRepo.
type memStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]types.User
	userOrder []uuid.UUID
	posts     map[uuid.UUID]types.Post
	postOrder []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]types.User),
		posts: make(map[uuid.UUID]types.Post),
	}
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *memStore) GetUserByID(_ context.Context, userID uuid.UUID) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (s *memStore) CreateUser(_ context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return nil, types.ErrConflict
		}
	}
	now := time.Now().UTC()
	u := types.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	u.PasswordHash = ""
	return &u, nil
}

func (s *memStore) deleteUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

func (s *memStore) UpdateProfile(_ context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	if params.Bio != nil {
		u.Bio = *params.Bio
	}
	if params.ProfilePicture != nil {
		u.ProfilePicture = *params.ProfilePicture
	}
	if params.Username != nil {
		u.Username = *params.Username
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	u.PasswordHash = ""
	return &u, nil
}

func (s *memStore) ListUsers(_ context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []types.User{}
	for _, id := range s.userOrder {
		if u, ok := s.users[id]; ok {
			u.PasswordHash = ""
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *memStore) ListPosts(_ context.Context) ([]types.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := []types.Post{}
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		if p, ok := s.posts[s.postOrder[i]]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (s *memStore) GetPostByID(_ context.Context, postID uuid.UUID) (*types.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) CreatePost(_ context.Context, ownerID uuid.UUID, params types.CreatePostParams) (*types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := types.Post{
		ID: uuid.New(), Title: params.Title, Description: params.Description,
		Tags: params.Tags, Images: params.Images, UserID: ownerID, CreatedAt: now, UpdatedAt: now,
	}
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return &p, nil
}

func (s *memStore) UpdatePost(_ context.Context, postID uuid.UUID, params types.UpdatePostParams) (*types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, types.ErrNotFound
	}
	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Tags != nil {
		p.Tags = params.Tags
	}
	if params.Images != nil {
		p.Images = params.Images
	}
	p.UpdatedAt = time.Now().UTC()
	s.posts[postID] = p
	return &p, nil
}

func (s *memStore) DeletePost(_ context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return types.ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}
