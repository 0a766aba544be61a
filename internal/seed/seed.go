// Package seed fills a development database with fake users and libraries.
// Every record goes through the regular services so the data satisfies the
// same validation as real traffic.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"patisson-users/internal/auth"
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/service"
	"patisson-users/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "QweQwe123!"

// maxUsernameBase leaves room for the numeric suffix within the 24 character limit.
const maxUsernameBase = 16

// Options controls how much data is generated.
type Options struct {
	Users            int
	LibrariesPerUser int
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

// Seeder creates fake data through the services.
type Seeder struct {
	users     *service.UserService
	libraries *service.LibraryService
}

// NewSeeder returns a Seeder writing through the given services.
func NewSeeder(users *service.UserService, libraries *service.LibraryService) *Seeder {
	return &Seeder{users: users, libraries: libraries}
}

// Run creates opts.Users users, each with opts.LibrariesPerUser library entries.
func (s *Seeder) Run(ctx context.Context, opts Options) ([]*models.User, error) {
	if opts.Seed != 0 {
		gofakeit.Seed(opts.Seed)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := range opts.Users {
		user, err := s.users.CreateUser(ctx, fakeUser(i))
		if err != nil {
			return users, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)

		for range opts.LibrariesPerUser {
			status := models.LibraryStatus(gofakeit.Number(int(models.LibraryStatusPlanning), int(models.LibraryStatusFinished)))
			if _, err := s.libraries.CreateLibrary(ctx, gofakeit.UUID(), user.ID, status); err != nil {
				return users, fmt.Errorf("create library for %s: %w", user.Username, err)
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding finished", "users", len(users), "libraries_per_user", opts.LibrariesPerUser)
	return users, nil
}

func fakeUser(i int) service.CreateUserInput {
	first := latinLetters(gofakeit.FirstName())
	last := latinLetters(gofakeit.LastName())

	in := service.CreateUserInput{
		Role:     auth.ClientRoleMember,
		Username: username(first, i),
		Password: DefaultPassword,
		Avatar:   ptr(fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())),
		About:    ptr(gofakeit.Sentence(8)),
	}
	// Names that do not fit the name rule are left empty.
	if _, err := validation.FirstName(first); err == nil {
		in.FirstName = &first
	}
	if _, err := validation.LastName(last); err == nil {
		in.LastName = &last
	}
	return in
}

// username derives a unique username from a first name and the user index.
func username(first string, i int) string {
	base := strings.ToLower(first)
	if len(base) < 3 {
		base += strings.ToLower(gofakeit.LetterN(3))
	}
	if len(base) > maxUsernameBase {
		base = base[:maxUsernameBase]
	}
	return base + strconv.Itoa(i+1)
}

func latinLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ptr[T any](v T) *T {
	return &v
}
