package repositories

import (
	"context"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type UserRepository interface {
	//create
	CreateUser(ctx context.Context, user *models.User) error

	//get
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	//update
	UpdateDailyTarget(ctx context.Context, id int64, minutes int) error

	//delete
	Delete(ctx context.Context, id int64) error
}
