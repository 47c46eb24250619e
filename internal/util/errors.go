package util

import "errors"

// Machine-readable error codes surfaced in the response envelope.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeStateConflict    = "STATE_CONFLICT"
	CodeUpstreamFailure  = "UPSTREAM_FAILURE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeCourseNotFound   = "COURSE_NOT_FOUND"
	CodeLectureNotFound  = "LECTURE_NOT_FOUND"
	CodeReviewNotFound   = "REVIEW_NOT_FOUND"
	CodeOwnCourse        = "OWN_COURSE"
	CodeSelfReview       = "SELF_REVIEW"
	CodeNotEnrolled      = "NOT_ENROLLED"
	CodeAlreadyEnrolled  = "ALREADY_ENROLLED"
	CodeAlreadyInCart    = "ALREADY_IN_CART"
	CodeNotInCart        = "NOT_IN_CART"
	CodeAlreadyReviewed  = "ALREADY_REVIEWED"
	CodeNotReviewOwner   = "NOT_REVIEW_OWNER"
	CodeAlreadyPending   = "ALREADY_PENDING"
	CodeRoleForbidden    = "ROLE_FORBIDDEN"
	CodePaymentNotPaid   = "PAYMENT_NOT_COMPLETED"
	CodeSessionOwnership = "SESSION_OWNERSHIP"
	CodeNoCourseMetadata = "NO_COURSE_METADATA"
	CodeCourseNotFree    = "COURSE_NOT_FREE"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrCourseNotFound  = errors.New("course not found")
	ErrLectureNotFound = errors.New("lecture not found")
	ErrCourseNotFree   = errors.New("course is not free")
	ErrOwnCourse       = errors.New("cannot act on your own course")

	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrAlreadyInCart   = errors.New("course already in cart")
	ErrNotInCart       = errors.New("item not in cart")

	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("course already reviewed")
	ErrNotReviewOwner  = errors.New("not the review's author")
	ErrSelfReview      = errors.New("cannot review your own course")

	ErrCertificateNotFound = errors.New("certificate not found")

	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyPending      = errors.New("a pending application already exists")
	ErrAlreadyReviewedApp  = errors.New("application already reviewed")
	ErrRoleForbidden       = errors.New("role not allowed for this operation")

	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrSessionOwnership    = errors.New("session does not belong to this user")
	ErrNoCourseMetadata    = errors.New("no course info in session metadata")
)
