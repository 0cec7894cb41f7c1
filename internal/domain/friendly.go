package domain

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// User-facing messages shown in place of raw upstream errors.
const (
	MsgOffline          = "You appear to be offline. Please check your internet connection and try again."
	MsgAPIKeyMissing    = "The API key is missing from the application configuration. The developer needs to configure it."
	MsgAPIKeyInvalid    = "The configured API key is invalid. The application developer needs to correct it."
	MsgRateLimited      = "The service is currently experiencing high demand. Please wait a moment and try again."
	MsgPromptBlocked    = "Your request was blocked for safety reasons. Please try rephrasing your input."
	MsgModelService     = "An unexpected error occurred with the AI service. Please try again later."
	MsgNetwork          = "A network error occurred, preventing the request from completing. Please check your connection and try again."
	MsgUnexpected       = "An unexpected error occurred. If the problem persists, please try restarting the session."
	MsgUnknown          = "An unknown error occurred. Please try again."
	MsgSaveFailed       = "Could not save your interview progress."
	MsgDeleteFailed     = "Failed to delete user data."
	MsgPasswordFailed   = "Failed to update password."
	MsgReservedEmail    = "This email address is reserved and cannot be used for registration."
	MsgDuplicateEmail   = "An account with this email already exists."
	MsgBadCredentials   = "Invalid email or password."
	MsgSpeechNotStarted = "Speech recognition is not active."
)

// UserFriendlyMessage translates an error raised anywhere in the interview
// flow into the message shown to the candidate. Network failures win over
// every other classification.
func UserFriendlyMessage(err error) string {
	if err == nil {
		return MsgUnknown
	}
	if isNetworkError(err) {
		return MsgOffline
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api_key environment variable not set"):
		return MsgAPIKeyMissing
	case strings.Contains(msg, "api key not valid"), strings.Contains(msg, "api_key_invalid"):
		return MsgAPIKeyInvalid
	case strings.Contains(msg, "429"), strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "rate limit"):
		return MsgRateLimited
	case strings.Contains(msg, "prompt was blocked"):
		return MsgPromptBlocked
	case strings.Contains(msg, "[google.api"):
		return MsgModelService
	case strings.Contains(msg, "failed to fetch"):
		return MsgNetwork
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Code == ErrPersistence {
		return domainErr.Message
	}
	return MsgUnexpected
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH)
}
