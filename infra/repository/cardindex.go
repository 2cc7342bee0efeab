package repository

import (
	"context"

	"github.com/zokasta/bank/infra/repository/account"
	"github.com/zokasta/bank/infra/repository/card"
	"gorm.io/gorm"
)

// CardNumberIndex answers whether a candidate card number is already in
// use anywhere in the bank. Debit and credit cards share one number space,
// so both tables are consulted.
type CardNumberIndex struct {
	db *gorm.DB
}

// NewCardNumberIndex creates a CardNumberIndex over the given *gorm.DB.
func NewCardNumberIndex(db *gorm.DB) *CardNumberIndex {
	return &CardNumberIndex{db: db}
}

// Exists implements repository.CardNumberIndex.
func (i *CardNumberIndex) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := i.db.WithContext(ctx).Model(&account.Account{}).
		Where("debit_card = ?", number).Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	err = i.db.WithContext(ctx).Model(&card.CreditCard{}).
		Where("card_number = ?", number).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
