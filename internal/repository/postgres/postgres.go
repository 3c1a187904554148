package postgres

import (
	"database/sql"

	"flexicredit-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AccountRepository
	repository.LedgerRepository
	repository.CampaignRepository
	repository.DeductionRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		AccountRepository:      NewAccountRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		CampaignRepository:     NewCampaignRepository(db),
		DeductionRepository:    NewDeductionRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
