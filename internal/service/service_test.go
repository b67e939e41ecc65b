package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/leads-service/internal/config"
	"github.com/Dan9191/leads-service/internal/models"
	"github.com/Dan9191/leads-service/internal/repository"
	"github.com/Dan9191/leads-service/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures outbound notifications instead of sending them
type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []string
	alerts        []string
	digests       []int64
}

func (n *recordingNotifier) SendLeadConfirmation(lead *models.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, lead.Email)
	return nil
}

func (n *recordingNotifier) SendLeadAlert(lead *models.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, lead.Email)
	return nil
}

func (n *recordingNotifier) SendPendingDigest(pending int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, pending)
	return nil
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmations), len(n.alerts)
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *repository.MemoryRepository, *recordingNotifier) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  ttl,
	}
	files, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := repository.NewMemoryRepository()
	notifier := &recordingNotifier{}
	return NewService(repo, repo, files, notifier, logger, cfg), repo, notifier
}

func seedLeads(t *testing.T, repo *repository.MemoryRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		lead := &models.Lead{
			FirstName:  fmt.Sprintf("First%d", i),
			LastName:   fmt.Sprintf("Last%d", i),
			Email:      fmt.Sprintf("lead%d@example.com", i),
			ResumePath: fmt.Sprintf("uploads/lead%d.pdf", i),
			State:      models.LeadStatePending,
		}
		require.NoError(t, repo.CreateLead(lead))
	}
}

func TestListLeads_InvalidPageSize(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	for _, pageSize := range []int{0, -1, -100} {
		_, err := svc.ListLeads(pageSize, 0)
		require.ErrorIs(t, err, models.ErrInvalidPageSize)
	}
}

func TestListLeads_EmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	page, err := svc.ListLeads(10, 0)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.EqualValues(t, 0, page.Total)
	require.False(t, page.HasMore)
	require.Nil(t, page.LastID)
}

func TestListLeads_ClampsPageSize(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)
	seedLeads(t, repo, 105)

	page, err := svc.ListLeads(1000, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 100)
	require.EqualValues(t, 105, page.Total)
	require.True(t, page.HasMore)
	require.EqualValues(t, 100, *page.LastID)
}

func TestListLeads_Cursor(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)
	seedLeads(t, repo, 15)

	first, err := svc.ListLeads(10, 0)
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	require.EqualValues(t, 1, first.Items[0].ID)
	require.EqualValues(t, 10, first.Items[9].ID)
	require.EqualValues(t, 15, first.Total)
	require.True(t, first.HasMore)
	require.NotNil(t, first.LastID)
	require.EqualValues(t, 10, *first.LastID)

	second, err := svc.ListLeads(10, *first.LastID)
	require.NoError(t, err)
	require.Len(t, second.Items, 5)
	require.EqualValues(t, 11, second.Items[0].ID)
	require.EqualValues(t, 15, second.Items[4].ID)
	require.EqualValues(t, 15, second.Total)
	require.False(t, second.HasMore)
	require.EqualValues(t, 15, *second.LastID)
}

func TestListLeads_ExhaustedCursor(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)
	seedLeads(t, repo, 3)

	page, err := svc.ListLeads(10, 3)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.EqualValues(t, 3, page.Total)
	require.False(t, page.HasMore)
	require.Nil(t, page.LastID)
}

func TestUpdateLead_Partial(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)

	lead := &models.Lead{
		FirstName:  "John",
		LastName:   "Doe",
		Email:      "john.doe@example.com",
		ResumePath: "uploads/john.pdf",
		State:      models.LeadStatePending,
	}
	require.NoError(t, repo.CreateLead(lead))
	createdUpdatedAt := lead.UpdatedAt

	firstName := "Jane"
	state := models.LeadStateReachedOut
	updated, err := svc.UpdateLead(lead.ID, models.LeadUpdate{
		FirstName: &firstName,
		State:     &state,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "Jane", updated.FirstName)
	require.Equal(t, "Doe", updated.LastName)
	require.Equal(t, "john.doe@example.com", updated.Email)
	require.Equal(t, models.LeadStateReachedOut, updated.State)
	require.False(t, updated.UpdatedAt.Before(createdUpdatedAt))
}

func TestUpdateLead_SoftMiss(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	state := models.LeadStateReachedOut
	lead, err := svc.UpdateLead(999, models.LeadUpdate{State: &state})
	require.NoError(t, err)
	require.Nil(t, lead)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)

	_, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register("staff@example.com", "otherpassword")
	require.ErrorIs(t, err, models.ErrDuplicateEmail)
	require.Equal(t, 1, repo.UserCount())
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	user, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, user.PasswordHash)
	require.NotContains(t, user.PasswordHash, "password123")
	require.True(t, user.IsActive)
}

func TestLoginAuthenticate_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	registered, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.Login("staff@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.Authenticate(token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.Equal(t, "staff@example.com", user.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	_, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	// wrong password and unknown email fail identically
	_, err = svc.Login("staff@example.com", "wrongpassword")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "password123")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticate_Expired(t *testing.T) {
	svc, _, _ := newTestService(t, -1*time.Minute)

	_, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.Login("staff@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(token)
	require.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestAuthenticate_Tampered(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	_, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.Login("staff@example.com", "password123")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// flip one byte of the payload, keep the original signature
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = svc.Authenticate(tampered)
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthenticate_Malformed(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	_, err := svc.Authenticate("not.a.jwt")
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	svc, _, _ := newTestService(t, 30*time.Minute)

	// a correctly signed token whose subject was never registered
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ghost@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(signed)
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	svc, repo, _ := newTestService(t, 30*time.Minute)

	_, err := svc.Register("staff@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.Login("staff@example.com", "password123")
	require.NoError(t, err)

	repo.SetUserActive("staff@example.com", false)

	_, err = svc.Authenticate(token)
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestCreateLead(t *testing.T) {
	svc, _, notifier := newTestService(t, 30*time.Minute)

	content := []byte("resume content")
	lead, err := svc.CreateLead("John", "Doe", "john.doe@example.com", "resume.pdf", content)
	require.NoError(t, err)
	require.EqualValues(t, 1, lead.ID)
	require.Equal(t, models.LeadStatePending, lead.State)

	saved, err := os.ReadFile(lead.ResumePath)
	require.NoError(t, err)
	require.Equal(t, content, saved)

	// notifications run in the background and never block lead creation
	require.Eventually(t, func() bool {
		confirmations, alerts := notifier.counts()
		return confirmations == 1 && alerts == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSendPendingLeadsDigest(t *testing.T) {
	svc, repo, notifier := newTestService(t, 30*time.Minute)
	seedLeads(t, repo, 3)

	state := models.LeadStateReachedOut
	_, err := svc.UpdateLead(2, models.LeadUpdate{State: &state})
	require.NoError(t, err)

	require.NoError(t, svc.SendPendingLeadsDigest())

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Equal(t, []int64{2}, notifier.digests)
}
