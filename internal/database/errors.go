package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrorClass groups connection failures for logging. Retry policy does not
// depend on it.
type ErrorClass string

const (
	ClassNetwork         ErrorClass = "network"
	ClassServerSelection ErrorClass = "server_selection"
	ClassAuth            ErrorClass = "auth"
	ClassUnknown         ErrorClass = "unknown"
)

const authFailedCode = 18

func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == authFailedCode {
		return ClassAuth
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorCode(authFailedCode) {
		return ClassAuth
	}

	switch {
	case mongo.IsTimeout(err):
		return ClassServerSelection
	case mongo.IsNetworkError(err):
		return ClassNetwork
	default:
		return ClassUnknown
	}
}

// IsUnavailable reports whether err means the database could not be reached,
// as opposed to a rejected operation.
func IsUnavailable(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
