package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/workboard-api/internal/store"
)

// ErrNoRecipient is returned by a Recipient that cannot produce an address.
var ErrNoRecipient = errors.New("no recipient address")

// Recipient resolves the address a notification is sent to.
type Recipient func(ctx context.Context) (string, error)

// ToAddress resolves to a fixed address.
func ToAddress(addr string) Recipient {
	return func(ctx context.Context) (string, error) {
		addr := strings.TrimSpace(addr)
		if addr == "" {
			return "", ErrNoRecipient
		}
		return addr, nil
	}
}

// ToAssignee resolves a task assignee's name through the directory.
func ToAssignee(directory store.DirectoryStore, name string) Recipient {
	return func(ctx context.Context) (string, error) {
		name := strings.TrimSpace(name)
		if name == "" {
			return "", fmt.Errorf("%w: task is unassigned", ErrNoRecipient)
		}
		entry, err := directory.GetByName(ctx, name)
		if err != nil {
			return "", fmt.Errorf("%w: directory lookup for %q: %w", ErrNoRecipient, name, err)
		}
		if strings.TrimSpace(entry.Email) == "" {
			return "", fmt.Errorf("%w: %q has no email", ErrNoRecipient, name)
		}
		return strings.TrimSpace(entry.Email), nil
	}
}
