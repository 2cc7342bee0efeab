package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/zokasta/bank/infra/repository/dberr"
	ledgerdomain "github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates a transaction repository bound to the given session.
func New(db *gorm.DB) repository.TransactionRepository {
	return &repo{db: db}
}

// joinNames resolves sender and receiver display names through accounts
// and users, so history views need no second round trip.
const joinNames = `transactions.*, su.name AS sender_name, ru.name AS receiver_name`

func (r *repo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions").
		Select(joinNames).
		Joins("JOIN accounts sa ON sa.id = transactions.sender_id").
		Joins("JOIN users su ON su.id = sa.user_id").
		Joins("JOIN accounts ra ON ra.id = transactions.receiver_id").
		Joins("JOIN users ru ON ru.id = ra.user_id")
}

func (r *repo) Create(ctx context.Context, create dto.TransactionCreate) error {
	tx := Transaction{
		ID:         create.ID,
		SenderID:   create.SenderID,
		ReceiverID: create.ReceiverID,
		Amount:     create.Amount,
		Instrument: create.Instrument,
		ReversesID: create.ReversesID,
	}
	return dberr.Map(r.db.WithContext(ctx).Create(&tx).Error, ledgerdomain.ErrAlreadyRolledBack)
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error) {
	var out row
	err := r.joined(ctx).Where("transactions.id = ?", id).Take(&out).Error
	if err != nil {
		// A missing row and an already-reversed row answer a rollback
		// the same way.
		return nil, dberr.Map(err, ledgerdomain.ErrAlreadyRolledBack)
	}
	return mapRowToDTO(&out), nil
}

// MarkRolledBack flips the one-way flag. The rolled_back = false guard in
// the WHERE clause makes concurrent rollbacks of the same transaction
// settle to exactly one winner.
func (r *repo) MarkRolledBack(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND rolled_back = false", id).
		Update("rolled_back", true)
	if res.Error != nil {
		return dberr.Map(res.Error, ledgerdomain.ErrAlreadyRolledBack)
	}
	if res.RowsAffected == 0 {
		return ledgerdomain.ErrAlreadyRolledBack
	}
	return nil
}

func (r *repo) ListByAccount(ctx context.Context, accountID uuid.UUID, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	q := applyFilter(r.joined(ctx), filter).
		Where("transactions.sender_id = ? OR transactions.receiver_id = ?", accountID, accountID)
	var rows []row
	if err := q.Order("transactions.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, dberr.Map(err, ledgerdomain.ErrAlreadyRolledBack)
	}
	return mapRowsToDTO(rows), nil
}

func (r *repo) List(ctx context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	var rows []row
	err := applyFilter(r.joined(ctx), filter).
		Order("transactions.created_at DESC").Scan(&rows).Error
	if err != nil {
		return nil, dberr.Map(err, ledgerdomain.ErrAlreadyRolledBack)
	}
	return mapRowsToDTO(rows), nil
}

func (r *repo) SumAmount(ctx context.Context, filter dto.TransactionFilter) (int64, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&Transaction{}), filter)
	var sum int64
	err := q.Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	if err != nil {
		return 0, dberr.Map(err, ledgerdomain.ErrAlreadyRolledBack)
	}
	return sum, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Transaction{}, "id = ?", id)
	if res.Error != nil {
		return dberr.Map(res.Error, ledgerdomain.ErrAlreadyRolledBack)
	}
	if res.RowsAffected == 0 {
		return ledgerdomain.ErrAlreadyRolledBack
	}
	return nil
}

func applyFilter(q *gorm.DB, filter dto.TransactionFilter) *gorm.DB {
	if filter.Instrument != "" {
		q = q.Where("transactions.instrument = ?", filter.Instrument)
	}
	if filter.RolledBackOnly {
		q = q.Where("transactions.rolled_back = true")
	}
	if !filter.From.IsZero() {
		q = q.Where("transactions.created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("transactions.created_at < ?", filter.To)
	}
	return q
}

func mapRowToDTO(out *row) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:           out.ID,
		SenderID:     out.SenderID,
		ReceiverID:   out.ReceiverID,
		SenderName:   out.SenderName,
		ReceiverName: out.ReceiverName,
		Amount:       out.Amount,
		Instrument:   out.Instrument,
		RolledBack:   out.RolledBack,
		ReversesID:   out.ReversesID,
		CreatedAt:    out.CreatedAt,
		UpdatedAt:    out.UpdatedAt,
	}
}

func mapRowsToDTO(rows []row) []*dto.TransactionRead {
	result := make([]*dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapRowToDTO(&rows[i]))
	}
	return result
}
