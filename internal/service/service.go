package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/leads-service/internal/config"
	"github.com/Dan9191/leads-service/internal/models"
	"github.com/Dan9191/leads-service/internal/repository"
	"github.com/Dan9191/leads-service/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// maxPageSize caps caller-supplied page sizes; larger values are clamped,
// not rejected.
const maxPageSize = 100

// Notifier sends outbound lead-related emails
type Notifier interface {
	SendLeadConfirmation(lead *models.Lead) error
	SendLeadAlert(lead *models.Lead) error
	SendPendingDigest(pending int64) error
}

// Service handles business logic
type Service struct {
	users    repository.UserRepository
	leads    repository.LeadRepository
	files    *storage.Store
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(users repository.UserRepository, leads repository.LeadRepository,
	files *storage.Store, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		users:    users,
		leads:    leads,
		files:    files,
		notifier: notifier,
		log:      log,
		config:   cfg,
	}
}

// Register creates a new user with hashed password
func (s *Service) Register(email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a signed bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.users.FindUserByEmail(email)
	if err != nil {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// Authenticate verifies a bearer token and resolves it to a live user
func (s *Service) Authenticate(tokenString string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, models.ErrInvalidToken
	}

	user, err := s.users.FindUserByEmail(claims.Subject)
	if err != nil {
		return nil, models.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, models.ErrInvalidToken
	}
	return user, nil
}

// CreateLead stores the resume, persists the lead, and fires best-effort
// notifications that never affect the caller's result
func (s *Service) CreateLead(firstName, lastName, email, filename string, resume []byte) (*models.Lead, error) {
	path, err := s.files.Save(email, filename, resume)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		ResumePath: path,
		State:      models.LeadStatePending,
	}
	if err := s.leads.CreateLead(lead); err != nil {
		return nil, err
	}

	s.log.Infof("Lead created: %d (%s)", lead.ID, lead.Email)

	go func(lead models.Lead) {
		if err := s.notifier.SendLeadConfirmation(&lead); err != nil {
			s.log.Warnf("Lead confirmation email failed: %v", err)
		}
		if err := s.notifier.SendLeadAlert(&lead); err != nil {
			s.log.Warnf("Lead alert email failed: %v", err)
		}
	}(*lead)

	return lead, nil
}

// ListLeads returns one cursor-based page of leads ordered by id.
// Total always reflects the whole store, not the remaining tail.
func (s *Service) ListLeads(pageSize int, afterID int64) (*models.LeadPage, error) {
	if pageSize <= 0 {
		return nil, models.ErrInvalidPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.leads.CountLeads()
	if err != nil {
		return nil, err
	}

	// One extra row decides has_more without a second count query
	items, err := s.leads.ListLeadsAfter(afterID, pageSize+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
	}

	page := &models.LeadPage{
		Items:   items,
		Total:   total,
		HasMore: hasMore,
	}
	if len(items) > 0 {
		lastID := items[len(items)-1].ID
		page.LastID = &lastID
	}
	return page, nil
}

// UpdateLead applies a partial update to a lead. A missing id is a soft
// miss: (nil, nil), not an error.
func (s *Service) UpdateLead(id int64, update models.LeadUpdate) (*models.Lead, error) {
	lead, err := s.leads.UpdateLeadFields(id, update)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, nil
	}
	s.log.Infof("Lead updated: %d", lead.ID)
	return lead, nil
}

// GetResume returns the stored resume bytes for a lead together with the
// storage path the content type is derived from
func (s *Service) GetResume(id int64) ([]byte, string, error) {
	lead, err := s.leads.FindLeadByID(id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.files.Get(lead.ResumePath)
	if err != nil {
		return nil, "", err
	}
	return data, lead.ResumePath, nil
}

// SendPendingLeadsDigest mails staff a summary of leads awaiting outreach
func (s *Service) SendPendingLeadsDigest() error {
	pending, err := s.leads.CountLeadsByState(models.LeadStatePending)
	if err != nil {
		return err
	}
	if err := s.notifier.SendPendingDigest(pending); err != nil {
		return err
	}
	s.log.Infof("Pending leads digest sent: %d pending", pending)
	return nil
}
