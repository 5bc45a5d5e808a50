package dataset

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

const insertBatchSize = 500

type EcosystemRepo interface {
	LoadTables(ctx context.Context, tx *gorm.DB) (ecosystem.Tables, error)
	DeleteBooks(ctx context.Context, tx *gorm.DB, bookVUIDs []string) error
	InsertTables(ctx context.Context, tx *gorm.DB, t ecosystem.Tables) error
	ReplaceBooks(ctx context.Context, tx *gorm.DB, t ecosystem.Tables) error
}

type ecosystemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEcosystemRepo(db *gorm.DB, baseLog *logger.Logger) EcosystemRepo {
	return &ecosystemRepo{db: db, log: baseLog.With("repo", "EcosystemRepo")}
}

func (r *ecosystemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *ecosystemRepo) LoadTables(ctx context.Context, tx *gorm.DB) (ecosystem.Tables, error) {
	t := r.conn(tx).WithContext(ctx)
	var out ecosystem.Tables
	if err := t.Order("ordinal ASC").Find(&out.Books).Error; err != nil {
		return ecosystem.Tables{}, err
	}
	if err := t.Order("book_vuid ASC").Find(&out.Domain).Error; err != nil {
		return ecosystem.Tables{}, err
	}
	if err := t.Order("book_vuid ASC, position ASC").Find(&out.Innovation).Error; err != nil {
		return ecosystem.Tables{}, err
	}
	if err := t.Order("book_vuid ASC, ordinal ASC").Find(&out.Questions).Error; err != nil {
		return ecosystem.Tables{}, err
	}
	return out, nil
}

// DeleteBooks removes every row owned by the given books.
func (r *ecosystemRepo) DeleteBooks(ctx context.Context, tx *gorm.DB, bookVUIDs []string) error {
	if len(bookVUIDs) == 0 {
		return nil
	}
	t := r.conn(tx).WithContext(ctx)
	if err := t.Where("book_vuid IN ?", bookVUIDs).Delete(&ecosystem.QuestionRow{}).Error; err != nil {
		return err
	}
	if err := t.Where("book_vuid IN ?", bookVUIDs).Delete(&ecosystem.InnovationRow{}).Error; err != nil {
		return err
	}
	if err := t.Where("book_vuid IN ?", bookVUIDs).Delete(&ecosystem.DomainRow{}).Error; err != nil {
		return err
	}
	return t.Where("vuid IN ?", bookVUIDs).Delete(&ecosystem.BookRow{}).Error
}

func (r *ecosystemRepo) InsertTables(ctx context.Context, tx *gorm.DB, tables ecosystem.Tables) error {
	t := r.conn(tx).WithContext(ctx)
	if len(tables.Books) > 0 {
		if err := t.CreateInBatches(&tables.Books, insertBatchSize).Error; err != nil {
			return err
		}
	}
	if len(tables.Domain) > 0 {
		if err := t.CreateInBatches(&tables.Domain, insertBatchSize).Error; err != nil {
			return err
		}
	}
	if len(tables.Innovation) > 0 {
		if err := t.CreateInBatches(&tables.Innovation, insertBatchSize).Error; err != nil {
			return err
		}
	}
	if len(tables.Questions) > 0 {
		if err := t.CreateInBatches(&tables.Questions, insertBatchSize).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceBooks deletes and rewrites the books named in tables. Callers run
// it inside a transaction.
func (r *ecosystemRepo) ReplaceBooks(ctx context.Context, tx *gorm.DB, tables ecosystem.Tables) error {
	if err := r.DeleteBooks(ctx, tx, tables.BookVUIDs()); err != nil {
		return err
	}
	if err := r.InsertTables(ctx, tx, tables); err != nil {
		return err
	}
	r.log.Debug("Replaced book rows", "books", tables.BookVUIDs(), "pages", len(tables.Innovation), "questions", len(tables.Questions))
	return nil
}
