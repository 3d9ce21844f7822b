package auth_test

import (
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/adportal/adportal/internal/auth"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepo struct {
	users  map[string]*user.User
	hashes map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[string]*user.User),
		hashes: make(map[string]string),
	}
}

func (m *mockUserRepo) add(u *user.User, hash string) {
	m.users[u.Username] = u
	m.hashes[u.Username] = hash
}

func (m *mockUserRepo) GetCredentials(username string) (*user.User, string, error) {
	if u, ok := m.users[username]; ok {
		return u, m.hashes[username], nil
	}
	return nil, "", user.ErrNotFound
}

func (m *mockUserRepo) GetByID(id int64) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) TouchLastLogin(id int64) error { return nil }

type mockVerifier struct {
	err      error
	attempts []string
}

func (m *mockVerifier) Verify(login, password string) error {
	m.attempts = append(m.attempts, login)
	return m.err
}

var _ = Describe("Auth Service", func() {
	var (
		repo     *mockUserRepo
		verifier *mockVerifier
		cache    *credcache.Cache
		tokens   *auth.JWTTokenGenerator
		service  *auth.Service
	)

	const domain = "example.local"

	BeforeEach(func() {
		repo = newMockUserRepo()
		verifier = &mockVerifier{}
		cache = credcache.New(credcache.DefaultTTL)
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, verifier, tokens, cache, domain, slog.Default())

		repo.add(&user.User{ID: 1, Username: "jdoe@example.local", IsActive: true}, "")
	})

	Describe("Authenticate", func() {
		It("verifies against the directory and issues tokens", func() {
			result, err := service.Authenticate(auth.LoginDTO{Username: "jdoe@example.local", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.AccessToken).NotTo(BeEmpty())
			Expect(result.RefreshToken).NotTo(BeEmpty())

			claims, err := tokens.ValidateAccessToken(result.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Username).To(Equal("jdoe@example.local"))
		})

		It("treats a bare login and its UPN form as the same identity", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "JDoe", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(verifier.attempts).To(ConsistOf("jdoe@example.local"))
		})

		It("caches directory credentials only after a successful bind", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())

			creds, ok := cache.Get(1)
			Expect(ok).To(BeTrue())
			Expect(creds.Login).To(Equal("jdoe@example.local"))
			Expect(creds.Password).To(Equal("pw"))
		})

		It("does not cache credentials the directory rejected", func() {
			verifier.err = directory.ErrInvalidCredentials

			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))

			_, ok := cache.Get(1)
			Expect(ok).To(BeFalse())
		})

		It("rejects a directory-verified account with no local user", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "stranger", Password: "pw"})
			Expect(err).To(MatchError(auth.ErrUserNotProvisioned))
		})

		It("rejects an inactive user even with valid directory credentials", func() {
			repo.add(&user.User{ID: 2, Username: "gone@example.local", IsActive: false}, "")

			_, err := service.Authenticate(auth.LoginDTO{Username: "gone", Password: "pw"})
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("reports the directory being down distinctly from bad credentials", func() {
			verifier.err = directory.ErrUnavailable

			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "pw"})
			Expect(err).To(MatchError(auth.ErrDirectoryUnavailable))
		})

		It("validates input before touching the directory", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "", Password: "pw"})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
			Expect(verifier.attempts).To(BeEmpty())
		})

		Context("bootstrap superuser with a local password hash", func() {
			BeforeEach(func() {
				hash, err := bcrypt.GenerateFromPassword([]byte("root-pw"), bcrypt.MinCost)
				Expect(err).NotTo(HaveOccurred())
				repo.add(&user.User{ID: 3, Username: "root@example.local", IsActive: true, IsSuperuser: true}, string(hash))
			})

			It("authenticates locally without calling the directory", func() {
				_, err := service.Authenticate(auth.LoginDTO{Username: "root", Password: "root-pw"})
				Expect(err).NotTo(HaveOccurred())
				Expect(verifier.attempts).To(BeEmpty())
			})

			It("falls back to the directory when the local password mismatches", func() {
				_, err := service.Authenticate(auth.LoginDTO{Username: "root", Password: "directory-pw"})
				Expect(err).NotTo(HaveOccurred())
				Expect(verifier.attempts).To(ConsistOf("root@example.local"))
			})
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a valid refresh token for a new pair", func() {
			initial, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(initial.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("rejects an access token used as a refresh token", func() {
			initial, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(initial.AccessToken)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Logout", func() {
		It("drops the cached credentials", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())

			service.Logout(1)

			_, ok := cache.Get(1)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("HashPassword", func() {
		It("produces a hash bcrypt can verify", func() {
			hash, err := auth.HashPassword("secret", bcrypt.MinCost)
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret"))).To(Succeed())
		})
	})
})

var _ = Describe("JWTTokenGenerator", func() {
	It("rejects tokens signed with a different secret", func() {
		gen := auth.NewJWTTokenGenerator("secret-a", "secret-a-refresh", time.Minute, time.Hour)
		other := auth.NewJWTTokenGenerator("secret-b", "secret-b-refresh", time.Minute, time.Hour)

		token, err := gen.GenerateAccessToken(1, "jdoe@example.local")
		Expect(err).NotTo(HaveOccurred())

		_, err = other.ValidateAccessToken(token)
		Expect(err).To(MatchError(auth.ErrInvalidToken))
	})

	It("rejects expired tokens distinctly", func() {
		gen := auth.NewJWTTokenGenerator("secret", "refresh", -time.Minute, time.Hour)

		token, err := gen.GenerateAccessToken(1, "jdoe@example.local")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateAccessToken(token)
		Expect(err).To(MatchError(auth.ErrTokenExpired))
	})
})
