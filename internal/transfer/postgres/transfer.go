package postgres

import (
	transferDatamodel "github.com/adportal/adportal/internal/core/datamodel/transfer"
	"github.com/adportal/adportal/internal/transfer"
	"gorm.io/gorm"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(rec *transfer.Record) error {
	return r.db.Create(transfer.ToDataModel(rec)).Error
}

func (r *TransferRepository) List(limit, offset int) ([]*transfer.Record, error) {
	var models []transferDatamodel.OUTransferRecord
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]*transfer.Record, 0, len(models))
	for i := range models {
		records = append(records, transfer.FromDataModel(&models[i]))
	}
	return records, nil
}
