package giveaway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randy-tg/randybot/internal/domain"
)

// memStore is an in-memory CampaignStore + SlotStore with the same
// compare-and-set semantics as the SQL slot update.
type memStore struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*domain.Campaign
	slots     map[int64]*domain.Slot
	nextSlot  int64

	listDueErr map[uuid.UUID]error
}

func newMemStore() *memStore {
	return &memStore{
		campaigns:  make(map[uuid.UUID]*domain.Campaign),
		slots:      make(map[int64]*domain.Slot),
		listDueErr: make(map[uuid.UUID]error),
	}
}

func (m *memStore) addCampaign(c domain.Campaign, schedTimes []time.Time) domain.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.campaigns[c.ID] = &cp
	for _, t := range schedTimes {
		m.nextSlot++
		m.slots[m.nextSlot] = &domain.Slot{
			ID:         m.nextSlot,
			CampaignID: c.ID,
			SchedTime:  t,
		}
	}
	return cp
}

func (m *memStore) ListByStatus(_ context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to domain.CampaignStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *memStore) status(id uuid.UUID) domain.CampaignStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campaigns[id].Status
}

func (m *memStore) ListDue(_ context.Context, campaignID uuid.UUID, now time.Time) ([]domain.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.listDueErr[campaignID]; err != nil {
		return nil, err
	}
	var out []domain.Slot
	for _, s := range m.slots {
		if s.CampaignID == campaignID && !s.Assigned && !s.SchedTime.After(now) {
			out = append(out, cloneSlot(s))
		}
	}
	return out, nil
}

func (m *memStore) Assign(_ context.Context, slotID int64, w domain.Winner) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok || s.Assigned {
		return false, nil
	}
	cp := w
	s.Assigned = true
	s.Winner = &cp
	return true, nil
}

func (m *memStore) Counts(_ context.Context, campaignID uuid.UUID) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, assigned int
	for _, s := range m.slots {
		if s.CampaignID != campaignID {
			continue
		}
		total++
		if s.Assigned {
			assigned++
		}
	}
	return total, assigned, nil
}

func (m *memStore) AssignedUserIDs(_ context.Context, campaignID uuid.UUID) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, s := range m.slots {
		if s.CampaignID == campaignID && s.Assigned {
			ids = append(ids, s.Winner.UserID)
		}
	}
	return ids, nil
}

func (m *memStore) slotsOf(campaignID uuid.UUID) []domain.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Slot
	for _, s := range m.slots {
		if s.CampaignID == campaignID {
			out = append(out, cloneSlot(s))
		}
	}
	return out
}

func cloneSlot(s *domain.Slot) domain.Slot {
	cp := *s
	if s.Winner != nil {
		w := *s.Winner
		cp.Winner = &w
	}
	return cp
}

// memDirectory is an in-memory candidate population with timestamped message
// events.
type memDirectory struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	events []messageEvent
}

type messageEvent struct {
	userID int64
	at     time.Time
}

func newMemDirectory() *memDirectory {
	return &memDirectory{users: make(map[int64]*domain.User)}
}

func (d *memDirectory) addUser(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := u
	d.users[u.ID] = &cp
}

func (d *memDirectory) setBanned(id int64, banned bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id].Banned = banned
}

func (d *memDirectory) rename(id int64, firstName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id].FirstName = firstName
}

func (d *memDirectory) addMessages(userID int64, at time.Time, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < n; i++ {
		d.events = append(d.events, messageEvent{userID: userID, at: at})
	}
}

func (d *memDirectory) ListActive(context.Context) ([]domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.User
	for _, u := range d.users {
		if !u.Banned {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (d *memDirectory) MessageCounts(_ context.Context, since time.Time) (map[int64]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := make(map[int64]int)
	for _, ev := range d.events {
		if ev.at.Before(since) {
			continue
		}
		counts[ev.userID]++
	}
	return counts, nil
}

// memSettings backs the community gate and template overrides.
type memSettings struct {
	mu        sync.Mutex
	active    bool
	templates map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{active: true, templates: make(map[string]string)}
}

func (s *memSettings) setActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *memSettings) setTemplate(key, tpl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[key] = tpl
}

func (s *memSettings) CommunityActive(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s *memSettings) Template(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates[key], nil
}

// recordingNotifier captures deliveries instead of calling Telegram.
type recordingNotifier struct {
	mu          sync.Mutex
	dms         map[int64][]string
	announced   []string
	pinned      []int
	announceErr error
	nextMsgID   int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{dms: make(map[int64][]string)}
}

func (n *recordingNotifier) SendDirect(_ context.Context, userID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dms[userID] = append(n.dms[userID], text)
	return nil
}

func (n *recordingNotifier) Announce(_ context.Context, text string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.announceErr != nil {
		return 0, n.announceErr
	}
	n.nextMsgID++
	n.announced = append(n.announced, text)
	return n.nextMsgID, nil
}

func (n *recordingNotifier) Pin(_ context.Context, messageID int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pinned = append(n.pinned, messageID)
	return nil
}
