package repositories

import "regatta/internal/models"

// UserRepository defines the interface for user data access.
// Lookup methods return (nil, nil) when no row matches.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	Update(user *models.User) error
	ListAll(skip, limit int) ([]models.User, error)
}
