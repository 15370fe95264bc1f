package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/collection-management/internal/auth"
)

type mockAuthRepo struct {
	credentials map[string]string
	identities  map[string]*auth.Identity
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		credentials: make(map[string]string),
		identities:  make(map[string]*auth.Identity),
	}
}

func (m *mockAuthRepo) GetCredentials(employeeCode string) (string, error) {
	hash, found := m.credentials[employeeCode]
	if !found {
		return "", auth.ErrInvalidCredentials
	}
	return hash, nil
}

func (m *mockAuthRepo) GetIdentity(_ context.Context, employeeCode string) (*auth.Identity, error) {
	identity, found := m.identities[employeeCode]
	if !found {
		return nil, auth.ErrInvalidCredentials
	}
	return identity, nil
}

func (m *mockAuthRepo) GetGrantedPermissions(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *mockAuthRepo
		service *auth.Service
	)

	const password = "s3cure-pass"

	seedUser := func(code string, role auth.Role, active bool) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		repo.credentials[code] = string(hash)
		repo.identities[code] = &auth.Identity{
			ID:           1,
			EmployeeCode: code,
			FullName:     "Nguyễn Văn A",
			Role:         role,
			Department:   "XLTN",
			BranchCode:   "6400",
			IsActive:     active,
		}
	}

	BeforeEach(func() {
		repo = newMockAuthRepo()
		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			seedUser("EM001", auth.RoleEmployee, true)

			tokens, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001", Password: password})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.EmployeeCode).To(Equal("EM001"))
			Expect(claims.Role).To(Equal(string(auth.RoleEmployee)))
		})

		It("rejects a wrong password", func() {
			seedUser("EM001", auth.RoleEmployee, true)

			_, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001", Password: "wrong"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown employee with the same error as a bad password", func() {
			_, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM404", Password: password})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects a disabled account even with correct credentials", func() {
			seedUser("EM001", auth.RoleEmployee, false)

			_, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001", Password: password})
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("rejects missing fields before touching the store", func() {
			_, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001"})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair carrying the current role", func() {
			seedUser("EM001", auth.RoleEmployee, true)

			tokens, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001", Password: password})
			Expect(err).NotTo(HaveOccurred())

			// promotion takes effect at refresh, not mid-session
			repo.identities["EM001"].Role = auth.RoleManager

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Role).To(Equal(string(auth.RoleManager)))
		})

		It("rejects a refresh for a since-disabled account", func() {
			seedUser("EM001", auth.RoleEmployee, true)

			tokens, err := service.Authenticate(auth.LoginDTO{EmployeeCode: "EM001", Password: password})
			Expect(err).NotTo(HaveOccurred())

			repo.identities["EM001"].IsActive = false

			_, err = service.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-jwt")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("rejects a token signed with a different secret", func() {
			seedUser("EM001", auth.RoleEmployee, true)

			otherGen := auth.NewJWTTokenGenerator("other-secret", "other-refresh", 15*time.Minute, 7*24*time.Hour)
			token, err := otherGen.GenerateAccessToken(repo.identities["EM001"])
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})
})
