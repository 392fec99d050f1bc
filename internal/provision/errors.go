package provision

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// AuthErrorMsg is the fixed diagnostic recorded when a backend rejects
// credentials or permissions. It deliberately carries no detail from the
// underlying failure.
const AuthErrorMsg = "Bad request. Check for valid credentials and proper permissions."

// AuthError marks a failure as an authentication/authorization rejection by
// the backend. The provisioning contract maps it to a critical status with
// the fixed generic message instead of the raw error text.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError wraps err so IsAuthError recognizes it.
func NewAuthError(err error) error {
	return &AuthError{Err: err}
}

// awsAuthCodes are the AWS API error codes treated as credential/permission
// rejections rather than generic provisioning failures.
var awsAuthCodes = map[string]bool{
	"AccessDenied":          true,
	"AccessDeniedException": true,
	"AuthFailure":           true,
	"UnauthorizedOperation": true,
	"InvalidClientTokenId":  true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
}

// IsAuthError reports whether err is an authentication-class failure: either
// one explicitly wrapped with NewAuthError, or an AWS API rejection that
// indicates bad credentials or missing permissions.
func IsAuthError(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && awsAuthCodes[apiErr.ErrorCode()] {
		return true
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}

	return false
}
