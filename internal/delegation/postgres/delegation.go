package postgres

import (
	"context"
	"fmt"
	"time"

	errors "github.com/frahmantamala/collection-management/internal"
	delegationDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/delegation"
	"github.com/frahmantamala/collection-management/internal/delegation"
	"gorm.io/gorm"
)

type DelegationRepository struct {
	db *gorm.DB
}

func NewDelegationRepository(db *gorm.DB) delegation.Repository {
	return &DelegationRepository{db: db}
}

// CreateBatch inserts the whole batch in one transaction: any existing active
// delegation on a case in the batch aborts everything. The partial unique
// index on (case_id) WHERE status='active' backstops concurrent creators.
func (r *DelegationRepository) CreateBatch(ctx context.Context, rows []*delegation.Delegation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, d := range rows {
			var active int64
			err := tx.Model(&delegationDatamodel.Delegation{}).
				Where("case_id = ? AND status = ?", d.CaseID, delegation.StatusActive).
				Count(&active).Error
			if err != nil {
				return err
			}
			if active > 0 {
				return errors.NewConflictError(
					fmt.Sprintf("case %s already has an active delegation", d.CaseID),
					errors.ErrCodeDelegationActive)
			}

			row := delegationDatamodel.Delegation{
				CaseID:         d.CaseID,
				DelegatedBy:    d.DelegatedBy,
				DelegatedTo:    d.DelegatedTo,
				DelegationDate: d.DelegationDate,
				ExpiryDate:     d.ExpiryDate,
				Status:         d.Status,
				Notes:          d.Notes,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			d.ID = row.ID
			d.CreatedAt = row.CreatedAt
			d.UpdatedAt = row.UpdatedAt
		}
		return nil
	})
}

func (r *DelegationRepository) GetByID(ctx context.Context, id int64) (*delegation.Delegation, error) {
	var row delegationDatamodel.Delegation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDelegationNotFound
		}
		return nil, err
	}
	return toDomain(row), nil
}

func (r *DelegationRepository) List(ctx context.Context, filter delegation.ListFilter) ([]*delegation.Delegation, error) {
	q := r.db.WithContext(ctx).Model(&delegationDatamodel.Delegation{})

	if filter.Involving != "" {
		q = q.Where("delegated_by = ? OR delegated_to = ?", filter.Involving, filter.Involving)
	}
	if filter.DelegatedBy != "" {
		q = q.Where("delegated_by = ?", filter.DelegatedBy)
	}
	if filter.DelegatedTo != "" {
		q = q.Where("delegated_to = ?", filter.DelegatedTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CaseID != "" {
		q = q.Where("case_id = ?", filter.CaseID)
	}

	var rows []delegationDatamodel.Delegation
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	list := make([]*delegation.Delegation, 0, len(rows))
	for _, row := range rows {
		list = append(list, toDomain(row))
	}
	return list, nil
}

// RevokeActive is a conditional UPDATE: a row already revoked or expired is
// left untouched and reported as no change.
func (r *DelegationRepository) RevokeActive(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&delegationDatamodel.Delegation{}).
		Where("id = ? AND status = ?", id, delegation.StatusActive).
		Updates(map[string]any{
			"status":     delegation.StatusRevoked,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DelegationRepository) HasActiveAccess(ctx context.Context, caseID, delegateeCode string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&delegationDatamodel.Delegation{}).
		Where("case_id = ? AND delegated_to = ? AND status = ? AND expiry_date > ?",
			caseID, delegateeCode, delegation.StatusActive, now).
		Count(&count).Error
	return count > 0, err
}

// ExpireDue transitions every overdue active row in one statement and
// returns what it touched, so the caller can group notifications per
// delegatee. Read-then-write would race a concurrent revoke.
func (r *DelegationRepository) ExpireDue(ctx context.Context, now time.Time) ([]delegation.ExpiredRow, error) {
	var rows []delegation.ExpiredRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE delegations
		SET status = ?, updated_at = ?
		WHERE status = ? AND expiry_date < ?
		RETURNING id, case_id, delegated_to`,
		delegation.StatusExpired, now, delegation.StatusActive, now).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func toDomain(row delegationDatamodel.Delegation) *delegation.Delegation {
	return &delegation.Delegation{
		ID:             row.ID,
		CaseID:         row.CaseID,
		DelegatedBy:    row.DelegatedBy,
		DelegatedTo:    row.DelegatedTo,
		DelegationDate: row.DelegationDate,
		ExpiryDate:     row.ExpiryDate,
		Status:         row.Status,
		Notes:          row.Notes,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
