package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"handyhub/internal/domain/message"
	"handyhub/internal/domain/user"
	"handyhub/internal/repository"
	handyhub_errors "handyhub/pkg/errors"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password     string
	Customers    []string
	Providers    []string
	WithMessages bool
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password:     "Handy@123!",
		Customers:    []string{"Alice Customer", "Carlos Customer"},
		Providers:    []string{"Pat Plumber", "Erin Electrician"},
		WithMessages: true,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users    []user.User
	Messages int
}

// demoThread is one scripted exchange between a customer and a provider.
// Lines alternate, customer first.
type demoThread struct {
	customer, provider int
	lines              []string
	customerRead       bool // customer has read everything the provider sent
	providerRead       bool
}

var demoThreads = []demoThread{
	{customer: 0, provider: 0, lines: []string{
		"Hi, my kitchen sink is leaking under the cabinet.",
		"I can come by tomorrow morning. Is 9am fine?",
		"9am works, thanks!",
	}, customerRead: true},
	{customer: 0, provider: 1, lines: []string{
		"Do you install ceiling fans?",
		"Yes, send me a photo of the fixture when you can.",
	}, providerRead: true},
	{customer: 1, provider: 0, lines: []string{
		"Are you available this weekend for a water heater check?",
	}},
}

// Seed creates demo users and conversations through the store. It is safe
// to run twice: existing users are reused and pairs that already talk are
// left alone.
func Seed(ctx context.Context, store repository.Store, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	result := &SeedResult{}
	customers, err := seedUsers(ctx, store, cfg.Customers, user.RoleCustomer, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to seed customers: %w", err)
	}
	providers, err := seedUsers(ctx, store, cfg.Providers, user.RoleProvider, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to seed providers: %w", err)
	}
	result.Users = append(append(result.Users, customers...), providers...)

	if !cfg.WithMessages {
		return result, nil
	}
	for _, thread := range demoThreads {
		if thread.customer >= len(customers) || thread.provider >= len(providers) {
			continue
		}
		n, err := seedThread(ctx, store, customers[thread.customer], providers[thread.provider], thread)
		if err != nil {
			return nil, fmt.Errorf("failed to seed messages: %w", err)
		}
		result.Messages += n
	}
	return result, nil
}

// SeedEmail derives the login of a demo user from its name.
func SeedEmail(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ".")) + "@handyhub.dev"
}

func seedUsers(ctx context.Context, store repository.Store, names []string, role, hash string) ([]user.User, error) {
	out := make([]user.User, 0, len(names))
	for _, name := range names {
		email := SeedEmail(name)
		existing, err := store.Users().GetByEmail(ctx, email)
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, handyhub_errors.ErrNotFound) {
			return nil, err
		}

		u := user.User{Name: name, Email: email, Role: role, PasswordHash: hash}
		if err := store.Users().Create(ctx, &u); err != nil {
			return nil, fmt.Errorf("create %s: %w", email, err)
		}
		out = append(out, u)
	}
	return out, nil
}

func seedThread(ctx context.Context, store repository.Store, customer, provider user.User, thread demoThread) (int, error) {
	history, err := store.Messages().FindBetween(ctx, customer.ID, provider.ID)
	if err != nil {
		return 0, err
	}
	if len(history) > 0 {
		return 0, nil
	}

	err = store.Transaction(ctx, func(repos repository.Repositories) error {
		for i, line := range thread.lines {
			from, to := customer.ID, provider.ID
			if i%2 == 1 {
				from, to = to, from
			}
			m := &message.Message{SenderID: from, ReceiverID: to, Content: line, Type: message.TypeText}
			if err := repos.Messages().Create(ctx, m); err != nil {
				return err
			}
			if err := repos.Conversations().RecordMessage(ctx, *m); err != nil {
				return err
			}
		}
		if thread.customerRead {
			if err := markRead(ctx, repos, provider.ID, customer.ID); err != nil {
				return err
			}
		}
		if thread.providerRead {
			if err := markRead(ctx, repos, customer.ID, provider.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(thread.lines), nil
}

// markRead follows the chat service order: aggregate row first, then the
// message rows.
func markRead(ctx context.Context, repos repository.Repositories, sender, receiver int64) error {
	if err := repos.Conversations().ResetUnread(ctx, receiver, sender); err != nil {
		return err
	}
	_, err := repos.Messages().MarkRead(ctx, sender, receiver)
	return err
}
