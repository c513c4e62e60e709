package service

import (
	"errors"
)

// Kind classifies a domain failure; handlers map it to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is a domain failure with a message that is safe to show clients.
// Errors derived with withMessage still match their parent under errors.Is.
type Error struct {
	Kind    Kind
	Message string
	parent  *Error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for cur := e; cur != nil; cur = cur.parent {
		if cur == t {
			return true
		}
	}
	return false
}

func (e *Error) withMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg, parent: e}
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthorized"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}

	ErrInvalidID    = ErrValidation.withMessage("invalid id")
	ErrInvalidJSON  = ErrValidation.withMessage("invalid json")
	ErrMissingField = ErrValidation.withMessage("missing required fields")

	ErrMissingToken       = ErrUnauthenticated.withMessage("missing authorization header")
	ErrInvalidToken       = ErrUnauthenticated.withMessage("invalid token")
	ErrExpiredToken       = ErrUnauthenticated.withMessage("token expired")
	ErrInvalidCredentials = ErrUnauthenticated.withMessage("invalid email or password")

	ErrAdminOnly  = ErrForbidden.withMessage("access denied, admins only")
	ErrNotCreator = ErrForbidden.withMessage("you are not allowed to delete this book")

	ErrDuplicateEmail = ErrConflict.withMessage("email already exists")
	ErrDuplicateGenre = ErrConflict.withMessage("genre already exists")

	ErrUserNotFound     = ErrNotFound.withMessage("user not found")
	ErrAlreadyAdmin     = ErrValidation.withMessage("user is already an admin")
	ErrAuthorNotFound   = ErrNotFound.withMessage("author not found")
	ErrGenreNotFound    = ErrValidation.withMessage("one or more genre ids are invalid")
	ErrInvalidGenreList = ErrValidation.withMessage("genres must be an array of genre ids")
	ErrBookNotFound     = ErrNotFound.withMessage("book not found")
	ErrNoCover          = ErrNotFound.withMessage("book has no cover")
	ErrEmptyOrder       = ErrValidation.withMessage("book ids are required")
	ErrBooksNotFound    = ErrNotFound.withMessage("one or more books are not found")
	ErrNoOrders         = ErrNotFound.withMessage("no orders yet")

	ErrCoversUnavailable = &Error{Kind: KindUnavailable, Message: "cover storage not configured"}
)

// Invalid returns a validation error carrying msg.
func Invalid(msg string) *Error {
	return ErrValidation.withMessage(msg)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
