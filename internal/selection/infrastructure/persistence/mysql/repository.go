package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

type selectionRepository struct {
	db *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) domain.SelectionRepository {
	return &selectionRepository{db: db}
}

// WithTx 在同一事务中执行 fn，事务句柄通过 context 传递
func (r *selectionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *selectionRepository) Save(ctx context.Context, record *domain.SelectionRecord) error {
	model, err := toSelectionModel(record)
	if err != nil {
		return err
	}
	if model == nil {
		return nil
	}
	return r.getDB(ctx).WithContext(ctx).Save(model).Error
}

func (r *selectionRepository) GetByID(ctx context.Context, id string) (*domain.SelectionRecord, error) {
	var model SelectionModel
	err := r.getDB(ctx).WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSelectionRecord(&model)
}

func (r *selectionRepository) GetLatest(ctx context.Context, symbol string) (*domain.SelectionRecord, error) {
	var model SelectionModel
	err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("evaluated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSelectionRecord(&model)
}

func (r *selectionRepository) List(ctx context.Context, symbol string, limit, offset int) ([]*domain.SelectionRecord, int64, error) {
	db := r.getDB(ctx).WithContext(ctx).Model(&SelectionModel{}).Where("symbol = ?", symbol)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []SelectionModel
	if err := db.Order("evaluated_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*domain.SelectionRecord, 0, len(models))
	for i := range models {
		record, err := toSelectionRecord(&models[i])
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, nil
}

func (r *selectionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.GetTx(ctx); tx != nil {
		if gormTx, ok := tx.(*gorm.DB); ok {
			return gormTx
		}
	}
	return r.db
}
