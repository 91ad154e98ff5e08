package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the account storage capability. Lookups return
// common.ErrorNotFound for missing accounts; Save returns
// common.ErrorAlreadyExists when the username or email is already used by
// another account.
type Repository interface {
	FindByUsername(ctx context.Context, userName string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// Save inserts the account when ID is empty and updates it otherwise.
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
}
