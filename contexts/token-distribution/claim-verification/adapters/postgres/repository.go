package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/entities"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func Models() []any {
	return []any{&transactionLogModel{}, &tradeInModel{}, &outboxModel{}}
}

func (r *Repository) InsertIfAbsent(ctx context.Context, tx entities.VerifiedTransaction) (bool, error) {
	model := transactionLogModelFromEntity(tx)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tx_id"}}, DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, r.logError("claim_repo_log_insert_failed", result.Error, "tx_id", tx.TxID)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) InsertTradeInIfAbsent(ctx context.Context, tradeIn entities.TradeIn) (bool, error) {
	model := tradeInModelFromEntity(tradeIn)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tx_id"}}, DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, r.logError("claim_repo_tradein_insert_failed", result.Error, "tx_id", tradeIn.TxID)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SumCredited(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&tradeInModel{}).
		Select("COALESCE(SUM(qdoge_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, r.logError("claim_repo_sum_credited_failed", err)
	}
	return total, nil
}

func (r *Repository) SumCreditedForWallet(ctx context.Context, wallet qubic.Identity) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&tradeInModel{}).
		Select("COALESCE(SUM(qdoge_amount), 0)").
		Where("wallet_id = ?", string(wallet)).
		Scan(&total).Error
	if err != nil {
		return 0, r.logError("claim_repo_sum_credited_wallet_failed", err, "wallet_id", string(wallet))
	}
	return total, nil
}

func (r *Repository) CreditedByWallet(ctx context.Context) (map[qubic.Identity]int64, error) {
	var rows []struct {
		WalletID string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&tradeInModel{}).
		Select("wallet_id, COALESCE(SUM(qdoge_amount), 0) AS total").
		Group("wallet_id").
		Scan(&rows).Error
	if err != nil {
		return nil, r.logError("claim_repo_credited_by_wallet_failed", err)
	}
	out := make(map[qubic.Identity]int64, len(rows))
	for _, row := range rows {
		if row.Total > 0 {
			out[qubic.Identity(row.WalletID)] = row.Total
		}
	}
	return out, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("claim_repo_outbox_encode_failed", err, "event_id", envelope.EventID)
	}
	model := outboxModel{
		OutboxID:  uuid.NewString(),
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: envelope.OccurredAtUTC.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return r.logError("claim_repo_outbox_append_failed", err, "event_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.logError("claim_repo_outbox_list_failed", err)
	}
	out := make([]ports.OutboxMessage, 0, len(models))
	for _, model := range models {
		out = append(out, ports.OutboxMessage{
			OutboxID:  model.OutboxID,
			EventType: model.EventType,
			Payload:   model.Payload,
			CreatedAt: model.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{"status": outboxStatusPublished, "published_at": publishedAt.UTC()}).Error
	if err != nil {
		return r.logError("claim_repo_outbox_mark_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "token-distribution/claim-verification",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("claim repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type transactionLogModel struct {
	TxID     string    `gorm:"column:tx_id;primaryKey"`
	WalletID string    `gorm:"column:wallet_id;index"`
	FromID   string    `gorm:"column:from_id"`
	ToID     string    `gorm:"column:to_id"`
	TxType   string    `gorm:"column:tx_type"`
	Amount   int64     `gorm:"column:amount"`
	LoggedAt time.Time `gorm:"column:logged_at"`
}

func (transactionLogModel) TableName() string {
	return "transaction_log"
}

func transactionLogModelFromEntity(tx entities.VerifiedTransaction) transactionLogModel {
	return transactionLogModel{
		TxID:     tx.TxID,
		WalletID: string(tx.WalletID),
		FromID:   string(tx.From),
		ToID:     string(tx.To),
		TxType:   string(tx.Type),
		Amount:   tx.Amount,
		LoggedAt: tx.LoggedAt.UTC(),
	}
}

type tradeInModel struct {
	TxID        string    `gorm:"column:tx_id;primaryKey"`
	WalletID    string    `gorm:"column:wallet_id;index"`
	QxmrAmount  int64     `gorm:"column:qxmr_amount"`
	QdogeAmount int64     `gorm:"column:qdoge_amount"`
	Tick        int64     `gorm:"column:tick"`
	AcceptedAt  time.Time `gorm:"column:accepted_at"`
}

func (tradeInModel) TableName() string {
	return "tradeins"
}

func tradeInModelFromEntity(tradeIn entities.TradeIn) tradeInModel {
	return tradeInModel{
		TxID:        tradeIn.TxID,
		WalletID:    string(tradeIn.WalletID),
		QxmrAmount:  tradeIn.QxmrShares,
		QdogeAmount: tradeIn.QdogeAmount,
		Tick:        tradeIn.Tick,
		AcceptedAt:  tradeIn.AcceptedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "claim_outbox"
}

var _ ports.TransactionLog = (*Repository)(nil)
var _ ports.TradeInRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
