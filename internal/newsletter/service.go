package newsletter

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

// Service records newsletter opt-ins. Subscribing twice is a no-op.
type Service interface {
	Subscribe(ctx context.Context, email string) error
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "newsletter: db is required")
	}
	return &service{db: db}, nil
}

func (s *service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}

	subscriber := &models.NewsletterSubscriber{Email: email}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(subscriber).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: subscribe")
	}
	return nil
}
