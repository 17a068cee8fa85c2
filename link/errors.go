package link

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected means no host is paired; the report was dropped.
	ErrNotConnected = errors.New("no host connected")
	// ErrQueueFull means the send queue had no room; the report was dropped.
	ErrQueueFull = errors.New("send queue full")
)

// PairError is the problem+json line the keypad writes before closing a
// connection it refused to pair with.
type PairError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e PairError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

func errUnauthorized(detail string) PairError {
	return PairError{Status: 401, Title: "Unauthorized", Detail: detail}
}

func parsePairError(line string) (PairError, bool) {
	var pe PairError
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &pe); err != nil || pe.Status == 0 {
		return PairError{}, false
	}
	return pe, true
}
