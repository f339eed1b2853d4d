package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/domain/user"
)

// MockAlertRepository is a mock implementation of alert.Repository
type MockAlertRepository struct {
	Rules       map[int64]*alert.Rule
	NextID      int64
	CreateError error
	ListError   error
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		Rules:  make(map[int64]*alert.Rule),
		NextID: 1,
	}
}

func (m *MockAlertRepository) Create(ctx context.Context, r *alert.Rule) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	r.ID = m.NextID
	m.NextID++
	r.CreatedAt = time.Now()
	m.Rules[r.ID] = r
	return r.ID, nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, userID int64, id int64) (*alert.Rule, error) {
	r, ok := m.Rules[id]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("alert not found")
	}
	return r, nil
}

func (m *MockAlertRepository) Update(ctx context.Context, r *alert.Rule) error {
	if _, ok := m.Rules[r.ID]; !ok {
		return fmt.Errorf("alert not found")
	}
	m.Rules[r.ID] = r
	return nil
}

func (m *MockAlertRepository) Delete(ctx context.Context, userID int64, id int64) error {
	r, ok := m.Rules[id]
	if !ok || r.UserID != userID {
		return fmt.Errorf("alert not found")
	}
	delete(m.Rules, id)
	return nil
}

func (m *MockAlertRepository) ListByUser(ctx context.Context, userID int64, filter alert.Filter) ([]*alert.Rule, error) {
	var result []*alert.Rule
	for _, r := range m.Rules {
		if r.UserID != userID {
			continue
		}
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		if filter.Model != "" && r.Model != filter.Model {
			continue
		}
		if filter.ActiveOnly && !r.Active {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockAlertRepository) ListActive(ctx context.Context) ([]*alert.Rule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*alert.Rule
	for _, r := range m.Rules {
		if r.Active {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users      map[int64]*user.User
	EmailIndex map[string]*user.User
	NextID     int64
	GetError   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[int64]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if _, exists := m.EmailIndex[u.Email]; exists {
		return fmt.Errorf("email already registered")
	}
	u.ID = m.NextID
	m.NextID++
	u.CreatedAt = time.Now()
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

// MockMetricRepository is a mock implementation of metric.Repository
type MockMetricRepository struct {
	Samples     []metric.Sample
	InsertError error
	RecentError error
}

func NewMockMetricRepository() *MockMetricRepository {
	return &MockMetricRepository{}
}

func (m *MockMetricRepository) Insert(ctx context.Context, s *metric.Sample) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Samples = append(m.Samples, *s)
	return nil
}

func (m *MockMetricRepository) Recent(ctx context.Context, model string, since time.Time, limit int) ([]metric.Sample, error) {
	if m.RecentError != nil {
		return nil, m.RecentError
	}
	var result []metric.Sample
	for _, s := range m.Samples {
		if model != "" && s.Model != model {
			continue
		}
		if s.Timestamp.Before(since) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMetricRepository) Models(ctx context.Context, since time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, s := range m.Samples {
		if s.Timestamp.Before(since) || seen[s.Model] {
			continue
		}
		seen[s.Model] = true
		result = append(result, s.Model)
	}
	sort.Strings(result)
	return result, nil
}

// MockDispatchRepository is a mock implementation of dispatch.Repository
type MockDispatchRepository struct {
	Records     []*dispatch.Record
	NextID      int64
	CreateError error
	QueryError  error
}

func NewMockDispatchRepository() *MockDispatchRepository {
	return &MockDispatchRepository{NextID: 1}
}

func (m *MockDispatchRepository) Create(ctx context.Context, r *dispatch.Record) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	r.ID = m.NextID
	m.NextID++
	m.Records = append(m.Records, r)
	return nil
}

func (m *MockDispatchRepository) LatestSince(ctx context.Context, userID, alertID int64, since time.Time) (*dispatch.Record, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	var latest *dispatch.Record
	for _, r := range m.Records {
		if r.UserID != userID || r.AlertID != alertID || r.SentAt.Before(since) {
			continue
		}
		if latest == nil || r.SentAt.After(latest.SentAt) {
			latest = r
		}
	}
	return latest, nil
}

func (m *MockDispatchRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*dispatch.Record, error) {
	var result []*dispatch.Record
	for _, r := range m.Records {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SentAt.After(result[j].SentAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MockSettingsRepository is a mock implementation of settings.Repository
type MockSettingsRepository struct {
	Settings map[int64]*settings.Settings
	GetError error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Settings: make(map[int64]*settings.Settings),
	}
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID int64) (*settings.Settings, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Settings[userID], nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, s *settings.Settings) error {
	m.Settings[s.UserID] = s
	return nil
}

// SentEmail captures one MockMailer delivery
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer is a mock implementation of mailer.Mailer
type MockMailer struct {
	Sent    []SentEmail
	SendErr error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
