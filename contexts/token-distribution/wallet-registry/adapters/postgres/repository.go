package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	domainerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/errors"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
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

// Models returns the gorm models this repository owns, for migration at
// bootstrap.
func Models() []any {
	return []any{&userModel{}, &snapshotModel{}}
}

func (r *Repository) GetUser(ctx context.Context, wallet qubic.Identity) (entities.User, bool, error) {
	var model userModel
	err := r.db.WithContext(ctx).First(&model, "wallet_id = ?", string(wallet)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.User{}, false, nil
	}
	if err != nil {
		return entities.User{}, false, r.logError("registry_repo_get_user_failed", err, "wallet_id", string(wallet))
	}
	return model.toEntity(), true, nil
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) error {
	model := userModelFromEntity(user)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "wallet_id"}}, DoNothing: true}).
		Create(&model).Error
	if err != nil {
		return r.logError("registry_repo_create_user_failed", err, "wallet_id", string(user.WalletID))
	}
	return nil
}

func (r *Repository) UpdateRoles(ctx context.Context, wallet qubic.Identity, set roles.Set, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("wallet_id = ?", string(wallet)).
		Updates(map[string]any{"role": set.Format(), "updated_at": at.UTC()})
	if result.Error != nil {
		return r.logError("registry_repo_update_roles_failed", result.Error, "wallet_id", string(wallet))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) SetRegistered(ctx context.Context, wallet qubic.Identity, registered bool, at time.Time) error {
	access := 0
	if registered {
		access = 1
	}
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("wallet_id = ?", string(wallet)).
		Updates(map[string]any{"access_info": access, "updated_at": at.UTC()})
	if result.Error != nil {
		return r.logError("registry_repo_set_registered_failed", result.Error, "wallet_id", string(wallet))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).Order("wallet_id asc").Find(&models).Error; err != nil {
		return nil, r.logError("registry_repo_list_users_failed", err)
	}
	out := make([]entities.User, 0, len(models))
	for _, model := range models {
		out = append(out, model.toEntity())
	}
	return out, nil
}

func (r *Repository) GetSnapshot(ctx context.Context, wallet qubic.Identity) (entities.WalletSnapshot, bool, error) {
	var model snapshotModel
	err := r.db.WithContext(ctx).First(&model, "wallet_id = ?", string(wallet)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.WalletSnapshot{}, false, nil
	}
	if err != nil {
		return entities.WalletSnapshot{}, false, r.logError("registry_repo_get_snapshot_failed", err, "wallet_id", string(wallet))
	}
	return model.toEntity(), true, nil
}

// UpsertSnapshot compares the stored balance fields before writing so
// idempotent refreshes report mutated=false. The read and write run in one
// transaction; per-wallet writes are serialized by the row lock.
func (r *Repository) UpsertSnapshot(ctx context.Context, snapshot entities.WalletSnapshot) (bool, error) {
	mutated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing snapshotModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "wallet_id = ?", string(snapshot.WalletID)).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model := snapshotModelFromEntity(snapshot)
			model.AirdropAmt = 0
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			mutated = true
			return nil
		case err != nil:
			return err
		}

		if existing.QubicBal == snapshot.QubicBal &&
			existing.QearnBal == snapshot.QearnBal &&
			existing.PortalBal == snapshot.PortalBal &&
			existing.QxmrBal == snapshot.QxmrBal {
			return nil
		}
		mutated = true
		return tx.Model(&snapshotModel{}).
			Where("wallet_id = ?", string(snapshot.WalletID)).
			Updates(map[string]any{
				"qubic_bal":  snapshot.QubicBal,
				"qearn_bal":  snapshot.QearnBal,
				"portal_bal": snapshot.PortalBal,
				"qxmr_bal":   snapshot.QxmrBal,
				"updated_at": snapshot.UpdatedAt.UTC(),
			}).Error
	})
	if err != nil {
		return false, r.logError("registry_repo_upsert_snapshot_failed", err, "wallet_id", string(snapshot.WalletID))
	}
	return mutated, nil
}

func (r *Repository) SetAirdropAmount(ctx context.Context, wallet qubic.Identity, amount int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&snapshotModel{}).
		Where("wallet_id = ?", string(wallet)).
		Where("airdrop_amt <> ?", amount).
		Updates(map[string]any{"airdrop_amt": amount, "updated_at": at.UTC()})
	if result.Error != nil {
		return false, r.logError("registry_repo_set_airdrop_failed", result.Error, "wallet_id", string(wallet))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListSnapshots(ctx context.Context) ([]entities.WalletSnapshot, error) {
	var models []snapshotModel
	if err := r.db.WithContext(ctx).Order("wallet_id asc").Find(&models).Error; err != nil {
		return nil, r.logError("registry_repo_list_snapshots_failed", err)
	}
	out := make([]entities.WalletSnapshot, 0, len(models))
	for _, model := range models {
		out = append(out, model.toEntity())
	}
	return out, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "token-distribution/wallet-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("registry repository operation failed", fields...)
	return err
}

type userModel struct {
	WalletID   string    `gorm:"column:wallet_id;primaryKey"`
	Role       string    `gorm:"column:role"`
	AccessInfo int       `gorm:"column:access_info"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	access := 0
	if user.Registered {
		access = 1
	}
	return userModel{
		WalletID:   string(user.WalletID),
		Role:       user.Roles.Format(),
		AccessInfo: access,
		CreatedAt:  user.CreatedAt.UTC(),
		UpdatedAt:  user.UpdatedAt.UTC(),
	}
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		WalletID:   qubic.Identity(m.WalletID),
		Roles:      roles.Parse(m.Role),
		Registered: m.AccessInfo == 1,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type snapshotModel struct {
	WalletID   string    `gorm:"column:wallet_id;primaryKey"`
	QubicBal   int64     `gorm:"column:qubic_bal"`
	QearnBal   int64     `gorm:"column:qearn_bal"`
	PortalBal  int64     `gorm:"column:portal_bal"`
	QxmrBal    int64     `gorm:"column:qxmr_bal"`
	AirdropAmt int64     `gorm:"column:airdrop_amt"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (snapshotModel) TableName() string {
	return "res"
}

func snapshotModelFromEntity(snapshot entities.WalletSnapshot) snapshotModel {
	return snapshotModel{
		WalletID:   string(snapshot.WalletID),
		QubicBal:   snapshot.QubicBal,
		QearnBal:   snapshot.QearnBal,
		PortalBal:  snapshot.PortalBal,
		QxmrBal:    snapshot.QxmrBal,
		AirdropAmt: snapshot.AirdropAmt,
		UpdatedAt:  snapshot.UpdatedAt.UTC(),
	}
}

func (m snapshotModel) toEntity() entities.WalletSnapshot {
	return entities.WalletSnapshot{
		WalletID:   qubic.Identity(m.WalletID),
		QubicBal:   m.QubicBal,
		QearnBal:   m.QearnBal,
		PortalBal:  m.PortalBal,
		QxmrBal:    m.QxmrBal,
		AirdropAmt: m.AirdropAmt,
		UpdatedAt:  m.UpdatedAt,
	}
}

var _ ports.UserRepository = (*Repository)(nil)
var _ ports.SnapshotRepository = (*Repository)(nil)
