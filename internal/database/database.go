// Package database owns all Postgres access: entities, typed queries and
// transactions. It executes exactly what callers request and surfaces
// constraint failures unmodified; business rules live in the managers.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
)

// Querier is the set of typed queries, available both on the pool and inside
// a transaction.
type Querier interface {
	// users
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (Profile, error)
	ListUserGroups(ctx context.Context, userID uuid.UUID) ([]Group, error)

	// posts
	CreatePost(ctx context.Context, params CreatePostParams) (Post, error)
	GetPostByID(ctx context.Context, id uuid.UUID) (Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, params UpdatePostParams) (Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) (bool, error)
	PostExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListPostComments(ctx context.Context, postID uuid.UUID) ([]Comment, error)

	// comments
	CreateComment(ctx context.Context, params CreateCommentParams) (Comment, error)
	GetCommentByID(ctx context.Context, id uuid.UUID) (Comment, error)
	UpdateComment(ctx context.Context, id uuid.UUID, params UpdateCommentParams) (Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (bool, error)

	// groups and memberships
	CreateGroup(ctx context.Context, params CreateGroupParams) (Group, error)
	GetGroupByID(ctx context.Context, id uuid.UUID) (Group, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, params UpdateGroupParams) (Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) (bool, error)
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (Membership, error)
	CreateMembership(ctx context.Context, params CreateMembershipParams) (Membership, error)
	DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	CountGroupOwners(ctx context.Context, groupID uuid.UUID) (int, error)
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error)

	// audit
	CreateAuditEvent(ctx context.Context, params CreateAuditEventParams) error
}

// Store is a Querier that can also run a function inside a single
// transaction. The transactional Querier has read-your-own-writes visibility;
// if fn returns an error the transaction is rolled back.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(Querier) error) error
}

// conn is satisfied by *pgxpool.Pool and pgx.Tx.
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries implements Querier over a pool or transaction connection.
type Queries struct {
	db conn
}

// Database is the pool-backed Store used by the application.
type Database struct {
	Queries
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Database, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database configuration: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create database pool: %w", err)
	}

	return &Database{Queries: Queries{db: pool}, Pool: pool}, nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// InTx runs fn inside a single transaction. Rollback after a successful
// commit is a no-op.
func (db *Database) InTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
