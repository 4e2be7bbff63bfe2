package postgres

import (
	"context"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlueprintPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewBlueprintPostgreSQL(db *gorm.DB) repositories.BlueprintRepository {
	return &BlueprintPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts the blueprint and its items.
func (b *BlueprintPostgreSQL) Create(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error {
	return b.helpers.getDB(tx).WithContext(ctx).Create(blueprint).Error
}

func (b *BlueprintPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MockBlueprint, error) {
	var blueprint models.MockBlueprint
	if err := b.helpers.getDB(tx).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position").Order("id")
		}).
		First(&blueprint, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &blueprint, nil
}

func (b *BlueprintPostgreSQL) Update(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error {
	update := func(db *gorm.DB) error {
		result := db.Model(&models.MockBlueprint{ID: blueprint.ID}).
			Select("course_id", "title", "duration_minutes", "total_marks",
				"marks_correct", "marks_incorrect", "marks_unattempted").
			Omit(clause.Associations).
			Updates(blueprint)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}

		if err := db.Where("blueprint_id = ?", blueprint.ID).Delete(&models.BlueprintItem{}).Error; err != nil {
			return err
		}
		for i := range blueprint.Items {
			blueprint.Items[i].ID = 0
			blueprint.Items[i].BlueprintID = blueprint.ID
		}
		if len(blueprint.Items) == 0 {
			return nil
		}
		return db.Create(&blueprint.Items).Error
	}

	if tx != nil {
		return update(tx.WithContext(ctx))
	}
	return b.db.WithContext(ctx).Transaction(update)
}
