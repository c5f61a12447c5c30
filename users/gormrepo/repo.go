package gormrepo

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/users"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ users.UserRepo = (*UserRepo)(nil)

// UserRepo persists users through GORM. Open the DB with TranslateError so
// unique-index violations surface as gorm.ErrDuplicatedKey.
type UserRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Migrate creates or updates the users table.
func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&users.User{})
}

func (r *UserRepo) Create(user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if isDuplicate(err) {
			return users.ErrDuplicateEmail
		}
		return errors.Wrap(err, "[UserRepo.Create] db.Create")
	}
	return nil
}

func (r *UserRepo) GetByEmail(email string) (*users.User, error) {
	var user users.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.GetByEmail] db.First")
	}
	return &user, nil
}

func (r *UserRepo) GetByID(id string) (*users.User, error) {
	var user users.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.GetByID] db.First")
	}
	return &user, nil
}

func (r *UserRepo) List(offset, limit int) ([]*users.User, error) {
	var list []*users.User
	q := r.db.Order("created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "[UserRepo.List] db.Find")
	}
	return list, nil
}

func (r *UserRepo) UpdatePassword(id, passwordHash string) error {
	res := r.db.Model(&users.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "[UserRepo.UpdatePassword] db.Update")
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&users.User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "[UserRepo.Count] db.Count")
	}
	return count, nil
}

// isDuplicate also matches the raw SQLite message for drivers opened without
// error translation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
