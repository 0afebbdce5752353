package postgres

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/paylane/gateway/models"
	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/remote"
)

// maxPageSize caps listing pages regardless of the requested limit
const maxPageSize = 20

// PaymentRepository implements repositories.PaymentStore
type PaymentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB, logger *zap.Logger) repositories.PaymentStore {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// queryBuilder assembles a WHERE clause from optional filter conditions with
// positional parameters.
type queryBuilder struct {
	conditions []string
	args       []interface{}
}

func (b *queryBuilder) add(column string, value interface{}) {
	b.args = append(b.args, value)
	b.conditions = append(b.conditions, fmt.Sprintf("%s=$%d", column, len(b.args)))
}

func (b *queryBuilder) addIn(column string, values []string) {
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		b.args = append(b.args, v)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(b.args)))
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

func (b *queryBuilder) where() string {
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// pagination clamps the limit and converts the 1-based page to an offset
func pagination(limit, page int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

const merchantPaymentColumns = `id, external_id, merchant_id, client_id, status,
		payment_side, currency, target_amount, fiat_amount, crypto_amount,
		fee_type, margin, exchange_rate, fiat_fee, crypto_fee,
		holder_name, holder_account, bank_name, method,
		created_at, updated_at, deadline`

// ListForMerchant returns the merchant's payments, newest first
func (r *PaymentRepository) ListForMerchant(ctx context.Context, merchantID string, filter *models.MerchantPaymentsFilter) ([]models.MerchantPayment, error) {
	b := &queryBuilder{}
	b.add("merchant_id", merchantID)

	limit, offset := maxPageSize, 0
	if filter != nil {
		if filter.ID != nil {
			b.add("id", *filter.ID)
		}
		if filter.ExternalID != nil {
			b.add("external_id", *filter.ExternalID)
		}
		if filter.ClientID != nil {
			b.add("client_id", *filter.ClientID)
		}
		if len(filter.Status) > 0 {
			b.addIn("status", filter.Status)
		}
		if filter.PaymentSide != nil {
			b.add("payment_side", *filter.PaymentSide)
		}
		if filter.From != nil {
			b.args = append(b.args, *filter.From)
			b.conditions = append(b.conditions, fmt.Sprintf("created_at >= $%d", len(b.args)))
		}
		if filter.To != nil {
			b.args = append(b.args, *filter.To)
			b.conditions = append(b.conditions, fmt.Sprintf("created_at <= $%d", len(b.args)))
		}
		limit, offset = pagination(filter.Limit, filter.Page)
	}

	query := fmt.Sprintf("SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		merchantPaymentColumns, b.where(), limit, offset)

	payments, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) ([]models.MerchantPayment, error) {
			rows, err := r.db.QueryContext(ctx, query, b.args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			payments := make([]models.MerchantPayment, 0, limit)
			for rows.Next() {
				var p models.MerchantPayment
				if err := rows.Scan(
					&p.ID, &p.ExternalID, &p.MerchantID, &p.ClientID, &p.Status,
					&p.PaymentSide, &p.Currency, &p.TargetAmount, &p.FiatAmount, &p.CryptoAmount,
					&p.FeeType, &p.Margin, &p.ExchangeRate, &p.FiatFee, &p.CryptoFee,
					&p.HolderName, &p.HolderAccount, &p.BankName, &p.Method,
					&p.CreatedAt, &p.UpdatedAt, &p.Deadline,
				); err != nil {
					return nil, err
				}
				payments = append(payments, p)
			}
			return payments, rows.Err()
		})
	if err != nil {
		r.logger.Error("list merchant payments failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return nil, services.AsDomain(err)
	}
	return payments, nil
}

const traderPaymentColumns = `id, trader_id, bank_id, status, payment_side, currency,
		fiat_amount, crypto_amount, exchange_rate,
		holder_name, holder_account, bank_name, method,
		created_at, updated_at, deadline`

// ListForTrader returns the trader's payments, newest first
func (r *PaymentRepository) ListForTrader(ctx context.Context, traderID string, filter *models.TraderPaymentsFilter) ([]models.TraderPayment, error) {
	b := &queryBuilder{}
	b.add("trader_id", traderID)

	limit, offset := maxPageSize, 0
	if filter != nil {
		if filter.ID != nil {
			b.add("id", *filter.ID)
		}
		if filter.BankID != nil {
			b.add("bank_id", *filter.BankID)
		}
		if len(filter.Status) > 0 {
			b.addIn("status", filter.Status)
		}
		if filter.PaymentSide != nil {
			b.add("payment_side", *filter.PaymentSide)
		}
		limit, offset = pagination(filter.Limit, filter.Page)
	}

	query := fmt.Sprintf("SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		traderPaymentColumns, b.where(), limit, offset)

	payments, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) ([]models.TraderPayment, error) {
			rows, err := r.db.QueryContext(ctx, query, b.args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			payments := make([]models.TraderPayment, 0, limit)
			for rows.Next() {
				var p models.TraderPayment
				if err := rows.Scan(
					&p.ID, &p.TraderID, &p.BankID, &p.Status, &p.PaymentSide, &p.Currency,
					&p.FiatAmount, &p.CryptoAmount, &p.ExchangeRate,
					&p.HolderName, &p.HolderAccount, &p.BankName, &p.Method,
					&p.CreatedAt, &p.UpdatedAt, &p.Deadline,
				); err != nil {
					return nil, err
				}
				payments = append(payments, p)
			}
			return payments, rows.Err()
		})
	if err != nil {
		r.logger.Error("list trader payments failed",
			zap.String("trader_id", traderID),
			zap.Error(err))
		return nil, services.AsDomain(err)
	}
	return payments, nil
}
