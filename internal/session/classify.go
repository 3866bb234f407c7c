package session

import (
	"context"
	"errors"
	"net"
	"strings"

	"mirrorlab/internal/domain"
)

// Classify converts a transport or ssh library error into the fault
// taxonomy. The ssh client does not expose typed auth errors on the
// client side, so authentication is recognized by the handshake message.
func Classify(err error, device, op string) *domain.Fault {
	if err == nil {
		return nil
	}

	switch {
	case isTimeout(err):
		return domain.NewFault(domain.FaultTimeout, device, op, err)
	case isAuthFailure(err):
		return domain.NewFault(domain.FaultAuth, device, op, err)
	default:
		return domain.NewFault(domain.FaultConnection, device, op, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// ssh wraps the dial timeout into its handshake error text
	return strings.Contains(err.Error(), "i/o timeout")
}

func isAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unable to authenticate",
		"permission denied",
		"no supported methods remain",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
