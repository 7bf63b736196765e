// Package apperrors defines the error values business operations return.
// Handlers match them with errors.Is and map each to a stable status code;
// storage failures are never folded into these.
package apperrors

import "errors"

var (
	// ErrSelfReference is returned when actor and target are the same user.
	ErrSelfReference = errors.New("cannot send a friend request to yourself")

	// ErrDuplicateRequest is returned when a relationship already exists for
	// the pair, pending in either direction or accepted.
	ErrDuplicateRequest = errors.New("a relationship already exists between these users")

	// ErrRelationshipNotFound is returned when no relationship exists in the
	// state the requested transition needs.
	ErrRelationshipNotFound = errors.New("no relationship in the required state")

	// ErrDuplicateSession is returned on login while the user already has a
	// live session.
	ErrDuplicateSession = errors.New("user is already logged in elsewhere")

	// ErrIncorrectCredentials is returned when the user id or password is wrong.
	ErrIncorrectCredentials = errors.New("incorrect user id or password")

	// ErrUnauthenticated is returned when a session token does not resolve
	// to a live session.
	ErrUnauthenticated = errors.New("no live session for this token")

	// ErrUserNotFound is returned when the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUserID is returned on signup when the user id is taken.
	ErrDuplicateUserID = errors.New("user id is already taken")
)
