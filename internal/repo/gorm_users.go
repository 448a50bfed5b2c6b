package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return gormErr(r.DB.WithContext(ctx).Create(u).Error)
}

// UpdateProfile writes name, email and password only; the role flags are
// never touched here.
func (r *GormRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":     u.Name,
			"email":    u.Email,
			"password": u.Password,
		})
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAdmin flips is_admin only when the row is not an owner and the flag
// currently holds the opposite value. It reports whether a row changed.
func (r *GormRepo) SetAdmin(ctx context.Context, id string, admin bool) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_owner = ? AND is_admin = ?", id, false, !admin).
		Update("is_admin", admin)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string, guard DeleteGuard) (bool, error) {
	tx := r.DB.WithContext(ctx).Where("id = ?", id)
	if guard.RejectAdmin {
		tx = tx.Where("is_admin = ?", false)
	}
	if guard.RejectOwner {
		tx = tx.Where("is_owner = ?", false)
	}
	res := tx.Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
