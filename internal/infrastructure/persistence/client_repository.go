package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards so a search for "50%" is literal.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const clientSearchClause = `LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\'`

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Create creates a new client
func (r *GormClientRepository) Create(ctx context.Context, client *crm.Client) error {
	return r.db.WithContext(ctx).Create(models.ClientModelFromDomain(client)).Error
}

// Update overwrites all editable fields, including empty ones
func (r *GormClientRepository) Update(ctx context.Context, client *crm.Client) error {
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{
			"name":       client.Name,
			"email":      client.Email,
			"phone":      client.Phone,
			"notes":      client.Notes,
			"updated_at": time.Now(),
		})
	return affected(result)
}

// Delete removes the client's appointment links, then the client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&models.AppointmentClientModel{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.ClientModel{}, "id = ?", id))
	})
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// Search matches name, email or phone case-insensitively, ordered by name
func (r *GormClientRepository) Search(ctx context.Context, query string) ([]*crm.Client, error) {
	db := r.db.WithContext(ctx).Model(&models.ClientModel{})

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		db = db.Where(clientSearchClause, pattern, pattern, pattern)
	}

	var rows []models.ClientModel
	if err := db.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	clients := make([]*crm.Client, len(rows))
	for i := range rows {
		clients[i] = rows[i].ToDomain()
	}
	return clients, nil
}

// CountByIDs counts how many of the ids exist
func (r *GormClientRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

// Ensure GormClientRepository implements ClientRepository
var _ crm.ClientRepository = (*GormClientRepository)(nil)
