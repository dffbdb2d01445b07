package memstorage

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/borrzu/verify-service/internal/domain/admin"
)

// AdminRepository keeps admin accounts in memory. Production deployments
// seed it from configuration at startup.
type AdminRepository struct {
	mu       sync.RWMutex
	accounts map[string]*admin.Account
}

func NewAdminRepository() *AdminRepository {
	repo := &AdminRepository{
		accounts: make(map[string]*admin.Account),
	}

	adminPassword := "adminpassword"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)

	repo.accounts["admin"] = &admin.Account{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: string(hashedPassword),
		Role:         admin.RoleAdmin,
	}

	return repo
}

var _ admin.Repository = (*AdminRepository)(nil)

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*admin.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[strings.ToLower(username)]
	if !ok {
		return nil, admin.ErrNotFound
	}

	accCopy := *acc
	return &accCopy, nil
}

// AddAccount registers an account, keyed by lowercase username.
func (r *AdminRepository) AddAccount(acc *admin.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[strings.ToLower(acc.Username)] = acc
}

func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
