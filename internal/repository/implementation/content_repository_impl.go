package implementation

import (
	"context"
	"errors"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/mapper"
	"agent-chatbot-be/internal/model"
	"agent-chatbot-be/internal/repository/contract"
	"agent-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentUnitMapper
}

func NewContentRepository(db *gorm.DB) contract.ContentRepository {
	return &ContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentUnitMapper(),
	}
}

func (r *ContentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentRepositoryImpl) Create(ctx context.Context, unit *entity.ContentUnit) error {
	m := r.mapper.ToModel(unit)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*unit = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) Update(ctx context.Context, unit *entity.ContentUnit) error {
	m := r.mapper.ToModel(unit)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*unit = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentUnit, error) {
	var m model.ContentUnit
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentUnit, error) {
	var models []*model.ContentUnit
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ContentUnit{}).Count(&count).Error
	return count, err
}

func (r *ContentRepositoryImpl) GetUnitState(ctx context.Context, id uuid.UUID) (*entity.UnitState, error) {
	// Deliberately no deleted filter: the staleness check needs to see
	// soft-deleted rows to know they were deleted.
	var m model.ContentUnit
	err := r.db.WithContext(ctx).
		Select("state", "deleted").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity.UnitState{
		State:   entity.ContentState(m.State),
		Deleted: m.Deleted,
	}, nil
}

func (r *ContentRepositoryImpl) ListSearchable(ctx context.Context, categoryID uuid.UUID) ([]*entity.ContentUnit, error) {
	return r.FindAll(ctx,
		specification.ByCategory{CategoryID: categoryID},
		specification.StateIn{States: []string{string(entity.StateActive), string(entity.StatePublished)}},
		specification.NotDeleted{},
	)
}
