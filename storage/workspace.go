package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sourcing/models"
)

func gormErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

func (p *Postgres) CreateProject(ctx context.Context, project *models.Project) error {
	if err := p.orm.WithContext(ctx).Create(project).Error; err != nil {
		return gormErr(err, "create project")
	}
	return nil
}

func (p *Postgres) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := p.orm.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, gormErr(err, "get project")
	}
	return &project, nil
}

func (p *Postgres) ListProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	projects := []models.Project{}
	q := p.orm.WithContext(ctx).Order("created_at DESC")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, gormErr(err, "list projects")
	}
	return projects, nil
}

func (p *Postgres) UpdateProject(ctx context.Context, project *models.Project) error {
	res := p.orm.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).
		Select("*").Omit("id", "owner_id", "created_at").Updates(project)
	if res.Error != nil {
		return gormErr(res.Error, "update project")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateQCChecklist(ctx context.Context, checklist *models.QCChecklist) error {
	// Items are inserted through the association in the same transaction.
	if err := p.orm.WithContext(ctx).Create(checklist).Error; err != nil {
		return gormErr(err, "create qc checklist")
	}
	return nil
}

func (p *Postgres) GetQCChecklist(ctx context.Context, id uint) (*models.QCChecklist, error) {
	var checklist models.QCChecklist
	err := p.orm.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&checklist, id).Error
	if err != nil {
		return nil, gormErr(err, "get qc checklist")
	}
	return &checklist, nil
}

func (p *Postgres) ListQCChecklists(ctx context.Context, projectID string) ([]models.QCChecklist, error) {
	checklists := []models.QCChecklist{}
	err := p.orm.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("project_id = ?", projectID).Order("id").Find(&checklists).Error
	if err != nil {
		return nil, gormErr(err, "list qc checklists")
	}
	return checklists, nil
}

func (p *Postgres) UpdateQCItem(ctx context.Context, checklistID, itemID uint, checked *bool, notes string) (*models.QCChecklistItem, error) {
	var item models.QCChecklistItem
	err := p.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND checklist_id = ?", itemID, checklistID).First(&item).Error; err != nil {
			return err
		}
		if checked != nil {
			item.Checked = *checked
		}
		if notes != "" {
			item.Notes = notes
		}
		item.UpdatedAt = time.Now()
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, gormErr(err, "update qc item")
	}
	return &item, nil
}

func (p *Postgres) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := p.orm.WithContext(ctx).Create(n).Error; err != nil {
		return gormErr(err, "create notification")
	}
	return nil
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := p.orm.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(200).Find(&notifications).Error
	if err != nil {
		return nil, gormErr(err, "list notifications")
	}
	return notifications, nil
}

func (p *Postgres) MarkNotificationRead(ctx context.Context, userID string, id uint) error {
	res := p.orm.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"status": models.NotificationRead, "updated_at": time.Now()})
	if res.Error != nil {
		return gormErr(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := p.orm.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationUnread).
		Updates(map[string]interface{}{"status": models.NotificationRead, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, gormErr(res.Error, "mark notifications read")
	}
	return res.RowsAffected, nil
}

func (p *Postgres) SaveActivityLog(ctx context.Context, log *models.ActivityLog) error {
	if err := p.orm.WithContext(ctx).Create(log).Error; err != nil {
		return gormErr(err, "save activity log")
	}
	return nil
}

func (p *Postgres) ListActivityLogs(ctx context.Context, offset, limit int) ([]models.ActivityLog, int64, error) {
	var total int64
	if err := p.orm.WithContext(ctx).Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, gormErr(err, "count activity logs")
	}
	logs := []models.ActivityLog{}
	err := p.orm.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, gormErr(err, "list activity logs")
	}
	return logs, total, nil
}
