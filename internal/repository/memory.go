package repository

import (
	"sync"
	"time"

	"github.com/Dan9191/leads-service/internal/models"
)

// MemoryRepository is an in-memory implementation of the repository
// interfaces, used in tests in place of postgres
type MemoryRepository struct {
	mu         sync.Mutex
	users      map[string]*models.User
	leads      []*models.Lead
	nextUserID int64
	nextLeadID int64
}

// NewMemoryRepository initializes an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]*models.User),
		nextUserID: 1,
		nextLeadID: 1,
	}
}

// CreateUser creates a new user, enforcing email uniqueness
func (r *MemoryRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return models.ErrDuplicateEmail
	}
	user.ID = r.nextUserID
	r.nextUserID++
	user.IsActive = true
	user.CreatedAt = time.Now()

	stored := *user
	r.users[user.Email] = &stored
	return nil
}

// FindUserByEmail retrieves a user by exact email match
func (r *MemoryRepository) FindUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[email]
	if !exists {
		return nil, models.ErrNotFound
	}
	found := *user
	return &found, nil
}

// SetUserActive toggles a user's active flag
func (r *MemoryRepository) SetUserActive(email string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[email]; exists {
		user.IsActive = active
	}
}

// UserCount returns the number of stored users
func (r *MemoryRepository) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// CreateLead stores a new lead with a monotonically increasing id
func (r *MemoryRepository) CreateLead(lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead.ID = r.nextLeadID
	r.nextLeadID++
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	stored := *lead
	r.leads = append(r.leads, &stored)
	return nil
}

// FindLeadByID retrieves a lead by id
func (r *MemoryRepository) FindLeadByID(id int64) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead := r.findLocked(id)
	if lead == nil {
		return nil, models.ErrNotFound
	}
	found := *lead
	return &found, nil
}

// ListLeadsAfter returns up to limit leads with id greater than afterID,
// ordered by id ascending
func (r *MemoryRepository) ListLeadsAfter(afterID int64, limit int) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// leads are appended with increasing ids, so insertion order is id order
	result := []models.Lead{}
	for _, lead := range r.leads {
		if lead.ID <= afterID {
			continue
		}
		result = append(result, *lead)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// CountLeads returns the total number of stored leads
func (r *MemoryRepository) CountLeads() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.leads)), nil
}

// CountLeadsByState returns the number of leads in the given state
func (r *MemoryRepository) CountLeadsByState(state string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, lead := range r.leads {
		if lead.State == state {
			total++
		}
	}
	return total, nil
}

// UpdateLeadFields applies the non-nil fields of update to a lead.
// Returns (nil, nil) when no lead with the given id exists.
func (r *MemoryRepository) UpdateLeadFields(id int64, update models.LeadUpdate) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead := r.findLocked(id)
	if lead == nil {
		return nil, nil
	}

	if update.FirstName != nil {
		lead.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		lead.LastName = *update.LastName
	}
	if update.Email != nil {
		lead.Email = *update.Email
	}
	if update.State != nil {
		lead.State = *update.State
	}
	lead.UpdatedAt = time.Now()

	updated := *lead
	return &updated, nil
}

func (r *MemoryRepository) findLocked(id int64) *models.Lead {
	for _, lead := range r.leads {
		if lead.ID == id {
			return lead
		}
	}
	return nil
}
