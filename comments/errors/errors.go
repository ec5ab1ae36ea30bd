// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/gofiber/fiber/v2"
)

// Comment service specific errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEntityTypeNotFound = errors.New("entity type not found")

	// Request and validation errors
	ErrInvalidJSON          = errors.New("invalid JSON body")
	ErrInvalidUUID          = errors.New("invalid UUID format")
	ErrInvalidDate          = errors.New("invalid date format")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrMissingRoot          = errors.New("missing root parameter")
	ErrInvalidPage          = errors.New("invalid page")

	// Thread structure errors
	ErrCyclicThread  = errors.New("comment thread contains a cycle")
	ErrThreadTooDeep = errors.New("comment thread exceeds maximum depth")

	// Database and system errors
	ErrDatabaseOperation = errors.New("database operation failed")
)

// CommentError carries a user-facing message next to the failure code.
// Cause is normally one of the sentinel errors above.
type CommentError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CommentError) Unwrap() error {
	return e.Cause
}

// NewCommentError creates a new CommentError
func NewCommentError(code, message string, cause error) *CommentError {
	return &CommentError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// AsCommentError finds the first CommentError in err's chain
func AsCommentError(err error) (*CommentError, bool) {
	var commentErr *CommentError
	if errors.As(err, &commentErr) {
		return commentErr, true
	}
	return nil, false
}

// Error codes
const (
	CodeInvalidJSON          = "INVALID_JSON"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeEntityTypeNotFound   = "ENTITY_TYPE_NOT_FOUND"
	CodeInvalidUUID          = "INVALID_UUID"
	CodeInvalidDate          = "INVALID_DATE"
	CodeCommentNotFound      = "COMMENT_NOT_FOUND"
	CodeMissingRoot          = "MISSING_ROOT"
	CodeInvalidPage          = "INVALID_PAGE"
	CodeInvalidThread        = "INVALID_THREAD"
	CodeDatabaseError        = "DATABASE_ERROR"
)

// User-facing messages
const (
	MessageInvalidJSON     = "The entered JSON is not valid."
	MessageNotUUID         = "Value was not UUID"
	MessageUserNotFound    = "User was not found."
	MessageInvalidDate     = "Date you entered is incorrect."
	MessageInvalidPage     = "Invalid page."
	MessageMissingRoot     = "Please, input 'root' value."
	MessageRootNotUUID     = "Root is not UUID."
	MessageInvalidThread   = "Comment thread structure is invalid."
	MessageCommentCreated  = "New comment was created!"
	MessageInternalFailure = "Internal server error."
)

// MissingFieldError reports an absent key in a creation payload
func MissingFieldError(key string) *CommentError {
	return NewCommentError(CodeMissingRequiredField, fmt.Sprintf("The '%s' field was not found!", key), ErrMissingRequiredField)
}

// AuthorNotFoundError reports an author value that resolved to no user
func AuthorNotFoundError(value string) *CommentError {
	return NewCommentError(CodeUserNotFound, fmt.Sprintf("The user '%s' was not found", value), ErrUserNotFound)
}

// ParentEntityNotUUIDError reports a malformed parent_entity_uuid
func ParentEntityNotUUIDError() *CommentError {
	return NewCommentError(CodeInvalidUUID, "The parent_entity_uuid must be uuid", ErrInvalidUUID)
}

// EntityTypeNotFoundError reports an unresolvable parent_entity_type
func EntityTypeNotFoundError() *CommentError {
	return NewCommentError(CodeEntityTypeNotFound, "The parent_entity_type was not found", ErrEntityTypeNotFound)
}

// InvalidJSONError reports a body that is not a JSON object
func InvalidJSONError(cause error) *CommentError {
	if cause == nil {
		cause = ErrInvalidJSON
	} else {
		cause = fmt.Errorf("%w: %v", ErrInvalidJSON, cause)
	}
	return NewCommentError(CodeInvalidJSON, MessageInvalidJSON, cause)
}

// NotUUIDError reports an entity identifier that is absent or malformed
func NotUUIDError() *CommentError {
	return NewCommentError(CodeInvalidUUID, MessageNotUUID, ErrInvalidUUID)
}

// UserNotFoundError reports a history or export user that did not resolve
func UserNotFoundError() *CommentError {
	return NewCommentError(CodeUserNotFound, MessageUserNotFound, ErrUserNotFound)
}

// InvalidDateError reports a date filter outside the accepted format
func InvalidDateError(cause error) *CommentError {
	return NewCommentError(CodeInvalidDate, MessageInvalidDate, cause)
}

// InvalidPageError reports a page number that is malformed or past the end
func InvalidPageError() *CommentError {
	return NewCommentError(CodeInvalidPage, MessageInvalidPage, ErrInvalidPage)
}

// MissingRootError reports an absent root parameter
func MissingRootError() *CommentError {
	return NewCommentError(CodeMissingRoot, MessageMissingRoot, ErrMissingRoot)
}

// RootNotUUIDError reports a malformed root parameter
func RootNotUUIDError() *CommentError {
	return NewCommentError(CodeInvalidUUID, MessageRootNotUUID, ErrInvalidUUID)
}

// RootNotFoundError reports a root that names no stored comment
func RootNotFoundError(root string) *CommentError {
	return NewCommentError(CodeCommentNotFound, fmt.Sprintf("Element '%s' was not found.", root), ErrCommentNotFound)
}

// InvalidThreadError reports a cyclic or over-deep thread
func InvalidThreadError(cause error) *CommentError {
	return NewCommentError(CodeInvalidThread, MessageInvalidThread, cause)
}

// WrapDatabaseError wraps database errors
func WrapDatabaseError(err error) *CommentError {
	return NewCommentError(CodeDatabaseError, "Database operation failed", fmt.Errorf("%w: %v", ErrDatabaseOperation, err))
}

// statusFor maps an error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case CodeInvalidPage:
		return http.StatusNotFound
	case CodeInvalidThread:
		return http.StatusUnprocessableEntity
	case CodeDatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// NewMessageResponse builds the {name, message, status} envelope
func NewMessageResponse(status int, message string) models.MessageResponse {
	return models.MessageResponse{
		Name:    http.StatusText(status),
		Message: message,
		Status:  status,
	}
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if commentErr, ok := AsCommentError(err); ok && commentErr.Code != CodeDatabaseError {
		status := statusFor(commentErr.Code)
		return c.Status(status).JSON(NewMessageResponse(status, commentErr.Message))
	}

	switch {
	case errors.Is(err, ErrInvalidPage):
		return HandleNotFoundError(c, MessageInvalidPage)
	case errors.Is(err, ErrCyclicThread), errors.Is(err, ErrThreadTooDeep):
		return c.Status(http.StatusUnprocessableEntity).JSON(NewMessageResponse(http.StatusUnprocessableEntity, MessageInvalidThread))
	default:
		return c.Status(http.StatusInternalServerError).JSON(NewMessageResponse(http.StatusInternalServerError, MessageInternalFailure))
	}
}

// HandleBadRequestError renders a 400 envelope with the given message
func HandleBadRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(NewMessageResponse(http.StatusBadRequest, message))
}

// HandleNotFoundError renders a 404 envelope with the given message
func HandleNotFoundError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusNotFound).JSON(NewMessageResponse(http.StatusNotFound, message))
}

// HandleCreated renders the 201 envelope for a stored comment
func HandleCreated(c *fiber.Ctx) error {
	return c.Status(http.StatusCreated).JSON(NewMessageResponse(http.StatusCreated, MessageCommentCreated))
}
