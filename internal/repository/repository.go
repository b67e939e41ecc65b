package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/leads-service/internal/models"
	"github.com/lib/pq"
)

// UserRepository provides storage operations for users
type UserRepository interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
}

// LeadRepository provides storage operations for leads
type LeadRepository interface {
	CreateLead(lead *models.Lead) error
	FindLeadByID(id int64) (*models.Lead, error)
	ListLeadsAfter(afterID int64, limit int) ([]models.Lead, error)
	CountLeads() (int64, error)
	CountLeadsByState(state string) (int64, error)
	UpdateLeadFields(id int64, update models.LeadUpdate) (*models.Lead, error)
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, is_active, created_at)
		VALUES ($1, $2, TRUE, CURRENT_TIMESTAMP)
		RETURNING id, is_active, created_at`
	err := r.db.QueryRow(query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, is_active, created_at
		FROM users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsActive, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateLead creates a new lead in the database
func (r *Repository) CreateLead(lead *models.Lead) error {
	query := `
		INSERT INTO leads (first_name, last_name, email, resume_path, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, lead.FirstName, lead.LastName, lead.Email, lead.ResumePath, lead.State).
		Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// FindLeadByID retrieves a lead by id
func (r *Repository) FindLeadByID(id int64) (*models.Lead, error) {
	lead := &models.Lead{}
	query := `
		SELECT id, first_name, last_name, email, resume_path, state, created_at, updated_at
		FROM leads
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email,
			&lead.ResumePath, &lead.State, &lead.CreatedAt, &lead.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return lead, nil
}

// ListLeadsAfter retrieves up to limit leads with id greater than afterID,
// ordered by id ascending. afterID = 0 starts from the beginning.
func (r *Repository) ListLeadsAfter(afterID int64, limit int) ([]models.Lead, error) {
	query := `
		SELECT id, first_name, last_name, email, resume_path, state, created_at, updated_at
		FROM leads
		WHERE id > $1
		ORDER BY id
		LIMIT $2`
	rows, err := r.db.Query(query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var lead models.Lead
		if err := rows.Scan(&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email,
			&lead.ResumePath, &lead.State, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leads: %w", err)
	}
	return leads, nil
}

// CountLeads returns the total number of leads in the store
func (r *Repository) CountLeads() (int64, error) {
	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return total, nil
}

// CountLeadsByState returns the number of leads currently in the given state
func (r *Repository) CountLeadsByState(state string) (int64, error) {
	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM leads WHERE state = $1`, state).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count leads by state: %w", err)
	}
	return total, nil
}

// UpdateLeadFields applies the non-nil fields of update to the lead in a
// single UPDATE statement, refreshing updated_at. Returns (nil, nil) when
// no lead with the given id exists.
func (r *Repository) UpdateLeadFields(id int64, update models.LeadUpdate) (*models.Lead, error) {
	setClauses := []string{}
	args := []interface{}{}

	addSet := func(column string, value string) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.FirstName != nil {
		addSet("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		addSet("last_name", *update.LastName)
	}
	if update.Email != nil {
		addSet("email", *update.Email)
	}
	if update.State != nil {
		addSet("state", *update.State)
	}
	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE leads
		SET %s
		WHERE id = $%d
		RETURNING id, first_name, last_name, email, resume_path, state, created_at, updated_at`,
		strings.Join(setClauses, ", "), len(args))

	lead := &models.Lead{}
	err := r.db.QueryRow(query, args...).
		Scan(&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email,
			&lead.ResumePath, &lead.State, &lead.CreatedAt, &lead.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}
