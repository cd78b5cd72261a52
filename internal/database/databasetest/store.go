// Package databasetest provides an in-memory database.Store for manager and
// engine tests. It mirrors the schema's constraints, surfacing violations as
// *pgconn.PgError with the same SQLSTATE codes and constraint names Postgres
// would report, so translation logic is exercised for real.
package databasetest

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"socialite/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type membershipKey struct {
	GroupID uuid.UUID
	UserID  uuid.UUID
}

// Store holds all tables in maps guarded by one mutex. Zero value is not
// usable; construct with NewStore.
type Store struct {
	mu          sync.Mutex
	Users       map[uuid.UUID]database.User
	Profiles    map[uuid.UUID]database.Profile
	Posts       map[uuid.UUID]database.Post
	Comments    map[uuid.UUID]database.Comment
	Groups      map[uuid.UUID]database.Group
	Memberships map[membershipKey]database.Membership
	AuditEvents []database.CreateAuditEventParams
}

func NewStore() *Store {
	return &Store{
		Users:       make(map[uuid.UUID]database.User),
		Profiles:    make(map[uuid.UUID]database.Profile),
		Posts:       make(map[uuid.UUID]database.Post),
		Comments:    make(map[uuid.UUID]database.Comment),
		Groups:      make(map[uuid.UUID]database.Group),
		Memberships: make(map[membershipKey]database.Membership),
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func fkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

// InTx snapshots all tables, runs fn against the store itself and restores
// the snapshot when fn fails. That gives tests the same all-or-nothing
// behavior a real transaction has.
func (s *Store) InTx(ctx context.Context, fn func(database.Querier) error) error {
	s.mu.Lock()
	users := maps.Clone(s.Users)
	profiles := maps.Clone(s.Profiles)
	posts := maps.Clone(s.Posts)
	comments := maps.Clone(s.Comments)
	groups := maps.Clone(s.Groups)
	memberships := maps.Clone(s.Memberships)
	audits := len(s.AuditEvents)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.Users = users
		s.Profiles = profiles
		s.Posts = posts
		s.Comments = comments
		s.Groups = groups
		s.Memberships = memberships
		s.AuditEvents = s.AuditEvents[:audits]
		s.mu.Unlock()
		return err
	}
	return nil
}

// users

func (s *Store) CreateUser(ctx context.Context, params database.CreateUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == params.Email {
			return database.User{}, uniqueViolation("users_email_key")
		}
	}
	now := time.Now()
	u := database.User{ID: params.ID, Name: params.Name, Email: params.Email, CreatedAt: now, UpdatedAt: now}
	s.Users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, database.ErrUserNotFound
}

func (s *Store) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Users[id]
	return ok, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, params database.UpdateUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	if params.Email.IsSet {
		for otherID, other := range s.Users {
			if otherID != id && other.Email == params.Email.Val {
				return database.User{}, uniqueViolation("users_email_key")
			}
		}
		u.Email = params.Email.Val
	}
	if params.Name.IsSet {
		u.Name = params.Name.Val
	}
	u.UpdatedAt = time.Now()
	s.Users[id] = u
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[id]; !ok {
		return false, nil
	}
	delete(s.Users, id)
	delete(s.Profiles, id)
	for postID, p := range s.Posts {
		if p.AuthorID == id {
			delete(s.Posts, postID)
		}
	}
	for commentID, c := range s.Comments {
		if c.AuthorID == id {
			delete(s.Comments, commentID)
		}
		if _, ok := s.Posts[c.PostID]; !ok {
			delete(s.Comments, commentID)
		}
	}
	for groupID, g := range s.Groups {
		if g.CreatedByID == id {
			delete(s.Groups, groupID)
		}
	}
	for key := range s.Memberships {
		if key.UserID == id {
			delete(s.Memberships, key)
		}
		if _, ok := s.Groups[key.GroupID]; !ok {
			delete(s.Memberships, key)
		}
	}
	return true, nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (database.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return database.Profile{}, database.ErrProfileNotFound
	}
	return p, nil
}

func (s *Store) CreateProfile(ctx context.Context, params database.CreateProfileParams) (database.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[params.UserID]; !ok {
		return database.Profile{}, fkViolation("profiles_user_id_fkey")
	}
	if _, ok := s.Profiles[params.UserID]; ok {
		return database.Profile{}, uniqueViolation("profiles_pkey")
	}
	now := time.Now()
	p := database.Profile{
		UserID:    params.UserID,
		Bio:       params.Bio,
		AvatarURL: params.AvatarURL,
		Metadata:  params.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Profiles[p.UserID] = p
	return p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID uuid.UUID, params database.UpdateProfileParams) (database.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return database.Profile{}, database.ErrProfileNotFound
	}
	if params.Bio.IsSet {
		p.Bio = params.Bio
	}
	if params.AvatarURL.IsSet {
		p.AvatarURL = params.AvatarURL
	}
	if params.Metadata != nil {
		p.Metadata = params.Metadata
	}
	p.UpdatedAt = time.Now()
	s.Profiles[userID] = p
	return p, nil
}

func (s *Store) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]database.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var groups []database.Group
	for key := range s.Memberships {
		if key.UserID == userID {
			groups = append(groups, s.Groups[key.GroupID])
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// posts

func (s *Store) CreatePost(ctx context.Context, params database.CreatePostParams) (database.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[params.AuthorID]; !ok {
		return database.Post{}, fkViolation("posts_author_id_fkey")
	}
	now := time.Now()
	p := database.Post{
		ID:        params.ID,
		AuthorID:  params.AuthorID,
		Title:     params.Title,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Posts[p.ID] = p
	return p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uuid.UUID) (database.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Posts[id]
	if !ok {
		return database.Post{}, database.ErrPostNotFound
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, params database.UpdatePostParams) (database.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Posts[id]
	if !ok {
		return database.Post{}, database.ErrPostNotFound
	}
	if params.Title.IsSet {
		p.Title = params.Title.Val
	}
	if params.Content.IsSet {
		p.Content = params.Content.Val
	}
	p.UpdatedAt = time.Now()
	s.Posts[id] = p
	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Posts[id]; !ok {
		return false, nil
	}
	delete(s.Posts, id)
	for commentID, c := range s.Comments {
		if c.PostID == id {
			delete(s.Comments, commentID)
		}
	}
	return true, nil
}

func (s *Store) PostExists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Posts[id]
	return ok, nil
}

func (s *Store) ListPostComments(ctx context.Context, postID uuid.UUID) ([]database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var comments []database.Comment
	for _, c := range s.Comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

// comments

func (s *Store) CreateComment(ctx context.Context, params database.CreateCommentParams) (database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[params.AuthorID]; !ok {
		return database.Comment{}, fkViolation("comments_author_id_fkey")
	}
	if _, ok := s.Posts[params.PostID]; !ok {
		return database.Comment{}, fkViolation("comments_post_id_fkey")
	}
	now := time.Now()
	c := database.Comment{
		ID:        params.ID,
		AuthorID:  params.AuthorID,
		PostID:    params.PostID,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Comments[c.ID] = c
	return c, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id uuid.UUID) (database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Comments[id]
	if !ok {
		return database.Comment{}, database.ErrCommentNotFound
	}
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id uuid.UUID, params database.UpdateCommentParams) (database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Comments[id]
	if !ok {
		return database.Comment{}, database.ErrCommentNotFound
	}
	if params.Content.IsSet {
		c.Content = params.Content.Val
	}
	c.UpdatedAt = time.Now()
	s.Comments[id] = c
	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Comments[id]; !ok {
		return false, nil
	}
	delete(s.Comments, id)
	return true, nil
}

// groups and memberships

func (s *Store) CreateGroup(ctx context.Context, params database.CreateGroupParams) (database.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.Groups {
		if g.Name == params.Name {
			return database.Group{}, uniqueViolation("groups_name_key")
		}
	}
	if _, ok := s.Users[params.CreatedByID]; !ok {
		return database.Group{}, fkViolation("groups_created_by_id_fkey")
	}
	now := time.Now()
	g := database.Group{
		ID:          params.ID,
		Name:        params.Name,
		Description: params.Description,
		CreatedByID: params.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Groups[g.ID] = g
	return g, nil
}

func (s *Store) GetGroupByID(ctx context.Context, id uuid.UUID) (database.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.Groups[id]
	if !ok {
		return database.Group{}, database.ErrGroupNotFound
	}
	return g, nil
}

func (s *Store) UpdateGroup(ctx context.Context, id uuid.UUID, params database.UpdateGroupParams) (database.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.Groups[id]
	if !ok {
		return database.Group{}, database.ErrGroupNotFound
	}
	if params.Name.IsSet {
		for otherID, other := range s.Groups {
			if otherID != id && other.Name == params.Name.Val {
				return database.Group{}, uniqueViolation("groups_name_key")
			}
		}
		g.Name = params.Name.Val
	}
	if params.Description.IsSet {
		g.Description = params.Description
	}
	g.UpdatedAt = time.Now()
	s.Groups[id] = g
	return g, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Groups[id]; !ok {
		return false, nil
	}
	delete(s.Groups, id)
	for key := range s.Memberships {
		if key.GroupID == id {
			delete(s.Memberships, key)
		}
	}
	return true, nil
}

func (s *Store) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (database.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.Memberships[membershipKey{groupID, userID}]
	if !ok {
		return database.Membership{}, database.ErrMembershipNotFound
	}
	return m, nil
}

func (s *Store) CreateMembership(ctx context.Context, params database.CreateMembershipParams) (database.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Groups[params.GroupID]; !ok {
		return database.Membership{}, fkViolation("memberships_group_id_fkey")
	}
	if _, ok := s.Users[params.UserID]; !ok {
		return database.Membership{}, fkViolation("memberships_user_id_fkey")
	}
	key := membershipKey{params.GroupID, params.UserID}
	if _, ok := s.Memberships[key]; ok {
		return database.Membership{}, uniqueViolation("memberships_pkey")
	}
	if params.Role == database.RoleOwner {
		for otherKey, other := range s.Memberships {
			if otherKey.GroupID == params.GroupID && other.Role == database.RoleOwner {
				return database.Membership{}, uniqueViolation("idx_one_owner_per_group")
			}
		}
	}
	m := database.Membership{
		GroupID:  params.GroupID,
		UserID:   params.UserID,
		Role:     params.Role,
		JoinedAt: time.Now(),
	}
	s.Memberships[key] = m
	return m, nil
}

func (s *Store) DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{groupID, userID}
	if _, ok := s.Memberships[key]; !ok {
		return false, nil
	}
	delete(s.Memberships, key)
	return true, nil
}

func (s *Store) CountGroupOwners(ctx context.Context, groupID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key, m := range s.Memberships {
		if key.GroupID == groupID && m.Role == database.RoleOwner {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]database.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []database.GroupMember
	for key, m := range s.Memberships {
		if key.GroupID != groupID {
			continue
		}
		members = append(members, database.GroupMember{
			UserID:   m.UserID,
			Name:     s.Users[m.UserID].Name,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

// audit

func (s *Store) CreateAuditEvent(ctx context.Context, params database.CreateAuditEventParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AuditEvents = append(s.AuditEvents, params)
	return nil
}
