package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/riteshkumar/credit-ledger/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByEntityID(ctx context.Context, entityType, entityID string, actions ...string) ([]*models.AuditLog, error)
}

const auditSchema = `CREATE TABLE IF NOT EXISTS audit_logs (
	id          UUID PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	action      TEXT NOT NULL,
	day         INTEGER NOT NULL,
	old_value   JSONB,
	new_value   JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// pq error code for a missing relation
const undefinedTable = "42P01"

type PostgresAuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// EnsureSchema creates the audit_logs table when it does not exist yet.
func (r *PostgresAuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}
	return nil
}

// Create inserts a new audit log entry.
func (r *PostgresAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	query := `INSERT INTO audit_logs (id, entity_type, entity_id, action, day, old_value, new_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING created_at`

	var oldValue interface{}
	if log.OldValue != nil {
		oldValue = string(log.OldValue)
	}
	var newValue interface{}
	if log.NewValue != nil {
		newValue = string(log.NewValue)
	}

	err := r.db.QueryRowContext(ctx, query,
		log.ID,
		log.EntityType,
		log.EntityID,
		log.Action,
		log.Day,
		oldValue,
		newValue,
	).Scan(&log.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == undefinedTable {
			return fmt.Errorf("audit_logs table missing, run EnsureSchema: %w", err)
		}
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// GetByEntityID retrieves audit logs for a specific entity, newest first.
// When actions are given only those actions are returned.
func (r *PostgresAuditRepository) GetByEntityID(ctx context.Context, entityType, entityID string, actions ...string) ([]*models.AuditLog, error) {
	query := `SELECT id, entity_type, entity_id, action, day, old_value, new_value, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		AND (cardinality($3::text[]) = 0 OR action = ANY($3))
		ORDER BY created_at DESC`

	if actions == nil {
		actions = []string{}
	}
	rows, err := r.db.QueryContext(ctx, query, entityType, entityID, pq.Array(actions))
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs by entity ID: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		var oldValue, newValue []byte

		err := rows.Scan(
			&log.ID, &log.EntityType, &log.EntityID, &log.Action, &log.Day, &oldValue, &newValue, &log.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		if oldValue != nil {
			log.OldValue = json.RawMessage(oldValue)
		}
		if newValue != nil {
			log.NewValue = json.RawMessage(newValue)
		}

		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over audit logs: %w", err)
	}
	return logs, nil
}

// MemoryAuditRepository is the audit sink used when no database is configured.
type MemoryAuditRepository struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *log
	r.logs = append(r.logs, &cp)
	return nil
}

func (r *MemoryAuditRepository) GetByEntityID(ctx context.Context, entityType, entityID string, actions ...string) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(actions))
	for _, a := range actions {
		want[a] = true
	}

	var logs []*models.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if l.EntityType != entityType || l.EntityID != entityID {
			continue
		}
		if len(want) > 0 && !want[l.Action] {
			continue
		}
		cp := *l
		logs = append(logs, &cp)
	}
	return logs, nil
}
