package commonerrors

import "net/http"

var (
	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid email or password",
	)

	ErrEmailTaken = NewDomainError(
		"EMAIL_TAKEN",
		CategoryConflict,
		http.StatusConflict,
		"email is already registered",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrForbidden = NewDomainError(
		"FORBIDDEN",
		CategoryForbidden,
		http.StatusForbidden,
		"you do not have access to this resource",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrAccountNotFound = NewDomainError(
		"ACCOUNT_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"account not found",
	)

	ErrUserHasAccounts = NewDomainError(
		"USER_HAS_ACCOUNTS",
		CategoryConflict,
		http.StatusConflict,
		"user still owns bank accounts",
	)

	ErrValidation = NewDomainError(
		"VALIDATION_FAILED",
		CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrEmptyPatch = NewDomainError(
		"EMPTY_PATCH",
		CategoryValidation,
		http.StatusBadRequest,
		"no fields to update",
	)

	ErrInvalidAccountType = NewDomainError(
		"INVALID_ACCOUNT_TYPE",
		CategoryValidation,
		http.StatusBadRequest,
		"account type must be CURRENT or SAVINGS",
	)

	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrInternal = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrDatabase = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"database operation failed",
	)

	ErrEmptyUUID = NewDomainError(
		"EMPTY_UUID",
		CategoryValidation,
		http.StatusBadRequest,
		"id cannot be empty",
	)
)
