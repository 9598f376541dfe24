package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

// MockAlertRepository is a mock implementation of alert.Repository
type MockAlertRepository struct {
	mu          sync.Mutex
	Alerts      map[string]*alert.Alert
	Audit       []*alert.AuditEvent
	CreateError error
	GetError    error
	UpdateError error
	ListError   error
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		Alerts: make(map[string]*alert.Alert),
	}
}

func (m *MockAlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	copied := *a
	m.Alerts[a.ID] = &copied
	return nil
}

func (m *MockAlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Alerts[a.ID]; !ok {
		return errors.NotFound("Alert")
	}
	copied := *a
	m.Alerts[a.ID] = &copied
	return nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id string) (*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Alerts[id]
	if !ok {
		return nil, errors.NotFound("Alert")
	}
	copied := *a
	return &copied, nil
}

func (m *MockAlertRepository) GetOpenByFingerprint(ctx context.Context, fingerprint string) (*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, a := range m.Alerts {
		if a.Fingerprint == fingerprint && a.IsOpen() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Alert")
}

func (m *MockAlertRepository) ListByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*alert.Alert
	for _, a := range m.Alerts {
		if a.Fingerprint == fingerprint && !a.CreatedAt.Before(since) {
			copied := *a
			result = append(result, &copied)
		}
	}
	sortAlertsNewestFirst(result)
	return result, nil
}

func (m *MockAlertRepository) ListOpenSince(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*alert.Alert
	for _, a := range m.Alerts {
		if a.IsOpen() && !a.StartsAt.Before(since) {
			copied := *a
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartsAt.After(result[j].StartsAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockAlertRepository) ListByRuleSince(ctx context.Context, ruleID string, since time.Time) ([]*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*alert.Alert
	for _, a := range m.Alerts {
		if a.RuleID == ruleID && !a.CreatedAt.Before(since) {
			copied := *a
			result = append(result, &copied)
		}
	}
	sortAlertsNewestFirst(result)
	return result, nil
}

func (m *MockAlertRepository) CountActive(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.Alerts {
		if a.Status == alert.StatusActive {
			count++
		}
	}
	return count, nil
}

func (m *MockAlertRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range m.Alerts {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockAlertRepository) List(ctx context.Context, filter alert.Filter, limit, offset int) ([]*alert.Alert, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	var matched []*alert.Alert
	for _, a := range m.Alerts {
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Source != "" && a.Source != filter.Source {
			continue
		}
		if filter.RuleID != "" && a.RuleID != filter.RuleID {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sortAlertsNewestFirst(matched)

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *MockAlertRepository) AppendAudit(ctx context.Context, event *alert.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Audit = append(m.Audit, event)
	return nil
}

// AuditActions returns the recorded audit actions in order
func (m *MockAlertRepository) AuditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.Audit))
	for i, e := range m.Audit {
		actions[i] = e.Action
	}
	return actions
}

func sortAlertsNewestFirst(alerts []*alert.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
}

// MockRuleRepository is a mock implementation of alert.RuleRepository
type MockRuleRepository struct {
	mu          sync.Mutex
	Rules       map[string]*alert.Rule
	CreateError error
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		Rules: make(map[string]*alert.Rule),
	}
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *alert.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Rules[rule.ID] = rule
	return nil
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id string) (*alert.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.Rules[id]
	if !ok {
		return nil, errors.NotFound("Rule")
	}
	return rule, nil
}

func (m *MockRuleRepository) FindBySourceAndTitle(ctx context.Context, source, title string) (*alert.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rule := range m.Rules {
		if rule.Source == source && rule.Name == title {
			return rule, nil
		}
	}
	return nil, errors.NotFound("Rule")
}

// MockCorrelationRepository is a mock implementation of correlation.Repository
type MockCorrelationRepository struct {
	mu           sync.Mutex
	Correlations map[string]*correlation.Correlation
	CreateError  error
}

func NewMockCorrelationRepository() *MockCorrelationRepository {
	return &MockCorrelationRepository{
		Correlations: make(map[string]*correlation.Correlation),
	}
}

func (m *MockCorrelationRepository) CreateBatch(ctx context.Context, correlations []*correlation.Correlation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, c := range correlations {
		m.Correlations[c.ID] = c
	}
	return nil
}

func (m *MockCorrelationRepository) GetByID(ctx context.Context, id string) (*correlation.Correlation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Correlations[id]
	if !ok {
		return nil, errors.NotFound("Correlation")
	}
	return c, nil
}

func (m *MockCorrelationRepository) ListByAlert(ctx context.Context, alertID string) ([]*correlation.Correlation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*correlation.Correlation
	for _, c := range m.Correlations {
		if c.AlertID == alertID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Confidence > result[j].Confidence
	})
	return result, nil
}

// MockNotificationRepository is a mock implementation of notification.Repository
type MockNotificationRepository struct {
	mu          sync.Mutex
	History     map[string]*notification.History
	CreateError error
	UpdateError error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		History: make(map[string]*notification.History),
	}
}

func (m *MockNotificationRepository) Create(ctx context.Context, h *notification.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	copied := *h
	m.History[h.ID] = &copied
	return nil
}

func (m *MockNotificationRepository) Update(ctx context.Context, h *notification.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.History[h.ID]; !ok {
		return errors.NotFound("Notification")
	}
	copied := *h
	m.History[h.ID] = &copied
	return nil
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*notification.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.History[id]
	if !ok {
		return nil, errors.NotFound("Notification")
	}
	copied := *h
	return &copied, nil
}

func (m *MockNotificationRepository) ListByAlert(ctx context.Context, alertID string) ([]*notification.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*notification.History
	for _, h := range m.History {
		if h.AlertID == alertID {
			copied := *h
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.History, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*notification.History
	for _, h := range m.History {
		if filter.AlertID != "" && h.AlertID != filter.AlertID {
			continue
		}
		if filter.ChannelType != "" && h.ChannelType != filter.ChannelType {
			continue
		}
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		copied := *h
		matched = append(matched, &copied)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *MockNotificationRepository) ListStuckSent(ctx context.Context, before time.Time) ([]*notification.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*notification.History
	for _, h := range m.History {
		if h.Status == notification.StatusSent && h.SentAt != nil && !h.SentAt.After(before) {
			copied := *h
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for id, h := range m.History {
		if h.CreatedAt.Before(cutoff) {
			delete(m.History, id)
			purged++
		}
	}
	return purged, nil
}

// StatusCounts returns history rows grouped by status
func (m *MockNotificationRepository) StatusCounts() map[notification.Status]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[notification.Status]int)
	for _, h := range m.History {
		counts[h.Status]++
	}
	return counts
}

// MockChannelProvider is a mock implementation of notification.ChannelProvider
type MockChannelProvider struct {
	Channels []*notification.Channel
}

func NewMockChannelProvider(channels ...*notification.Channel) *MockChannelProvider {
	return &MockChannelProvider{Channels: channels}
}

func (m *MockChannelProvider) GetByType(ctx context.Context, t notification.ChannelType) (*notification.Channel, error) {
	for _, ch := range m.Channels {
		if ch.Type == t && ch.Enabled {
			return ch, nil
		}
	}
	return nil, errors.NotFound("Channel")
}

func (m *MockChannelProvider) List(ctx context.Context) ([]*notification.Channel, error) {
	return m.Channels, nil
}

// MockSender is a scriptable notification.Sender
type MockSender struct {
	mu          sync.Mutex
	ChannelType notification.ChannelType
	// SendResults is consumed one result per call; the last entry repeats
	SendResults []SendOutcome
	Sent        []SentMessage
}

// SendOutcome scripts one Send call
type SendOutcome struct {
	Result *notification.SendResult
	Err    error
}

// SentMessage records the arguments of one Send call
type SentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

func NewMockSender(t notification.ChannelType) *MockSender {
	return &MockSender{
		ChannelType: t,
		SendResults: []SendOutcome{{Result: &notification.SendResult{Success: true}}},
	}
}

func (m *MockSender) Send(ctx context.Context, recipient, subject, body string, config map[string]interface{}) (*notification.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Recipient: recipient, Subject: subject, Body: body})

	outcome := m.SendResults[0]
	if len(m.SendResults) > 1 {
		m.SendResults = m.SendResults[1:]
	}
	return outcome.Result, outcome.Err
}

func (m *MockSender) ValidateConfig(config map[string]interface{}) []string {
	return nil
}

func (m *MockSender) Info() notification.ChannelInfo {
	return notification.ChannelInfo{
		Type: m.ChannelType,
		Description: "mock " + string(m.ChannelType) + " sender",
	}
}

// SentCount returns the number of Send calls so far
func (m *MockSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockCheckingSender is a MockSender that also reports delivery status
type MockCheckingSender struct {
	*MockSender
	CheckStatus notification.Status
	CheckErr    error
}

func NewMockCheckingSender(t notification.ChannelType, status notification.Status) *MockCheckingSender {
	return &MockCheckingSender{
		MockSender:  NewMockSender(t),
		CheckStatus: status,
	}
}

func (m *MockCheckingSender) CheckDeliveryStatus(ctx context.Context, notificationID string, responseData map[string]string) (notification.Status, error) {
	if m.CheckErr != nil {
		return "", m.CheckErr
	}
	return m.CheckStatus, nil
}

// MockEscalationHook records escalation starts and stops
type MockEscalationHook struct {
	mu      sync.Mutex
	Started []string
	Stopped []string
}

func NewMockEscalationHook() *MockEscalationHook {
	return &MockEscalationHook{}
}

func (m *MockEscalationHook) StartEscalation(ctx context.Context, a *alert.Alert, policy *notification.EscalationPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, a.ID)
	return nil
}

func (m *MockEscalationHook) StopEscalation(ctx context.Context, alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped = append(m.Stopped, alertID)
	return nil
}
