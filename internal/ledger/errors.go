package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoShip means the captain has no ship account on the ledger yet.
	// It is a state, not a fault: the loop reacts by creating one.
	ErrNoShip = errors.New("no ship for captain")

	// ErrNotRegistered means the captain has no competitive record.
	ErrNotRegistered = errors.New("captain not registered")
)

// apiError carries the gateway status code so transient throttling and
// expected race losses can be told apart from real failures.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("gateway request failed (status %d)", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsRateLimited reports whether err is the read interface telling us to
// back off. The gateway enforces one request budget across the whole fleet.
func IsRateLimited(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		if ae.Status == http.StatusTooManyRequests {
			return true
		}
		return containsAny(ae.Message, "rate limit", "too many requests")
	}
	return false
}

// IsRaceLoss reports whether a write failed because another captain got to
// the same challenge first. Benign: logged, never escalated.
func IsRaceLoss(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return containsAny(ae.Message, "already accepted", "already completed", "already settled")
	}
	return false
}

func containsAny(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
