// Package mapping translates closed-vocabulary legacy tokens into target enums.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"

	"github.com/stwalsh4118/reclaim/internal/models"
)

var (
	// ErrUnsupportedCategory is returned for a device type outside the category table.
	ErrUnsupportedCategory = errors.New("unsupported device category")
	// ErrUnsupportedStatus is returned for a device status outside the status table.
	ErrUnsupportedStatus = errors.New("unsupported device status")
	// ErrInvalidTables is returned when the mapping tables contradict themselves.
	ErrInvalidTables = errors.New("invalid mapping tables")
)

// Mapper resolves legacy tokens against the mapping tables. It is immutable after construction.
type Mapper struct {
	categories        map[string]models.Category
	emptyCategory     map[string]struct{}
	defaultCategory   models.Category
	equipmentStatuses map[string]models.EquipmentStatus
	ticketStatuses    map[string]models.TicketStatus
	staff             map[string]int64
	aliases           []string
	issueMarkers      []string
	noneTokens        map[string]struct{}
	sponsorPrefix     string
	exceptions        Exceptions
}

// NewMapper validates tables and builds the lookup maps.
func NewMapper(t Tables) (*Mapper, error) {
	m := &Mapper{
		categories:        make(map[string]models.Category),
		emptyCategory:     make(map[string]struct{}),
		defaultCategory:   models.Category(t.DefaultCategory),
		equipmentStatuses: make(map[string]models.EquipmentStatus),
		ticketStatuses:    make(map[string]models.TicketStatus),
		staff:             make(map[string]int64),
		noneTokens:        make(map[string]struct{}),
		sponsorPrefix:     fold(t.SponsorshipPrefix),
		exceptions:        t.Exceptions,
	}

	if !oneOf(m.defaultCategory, models.Categories) {
		return nil, fmt.Errorf("%w: default category %q", ErrInvalidTables, t.DefaultCategory)
	}
	for _, token := range t.EmptyCategoryTokens {
		m.emptyCategory[fold(token)] = struct{}{}
	}
	for _, token := range t.NoneTokens {
		if key := fold(token); key != "" {
			m.noneTokens[key] = struct{}{}
		}
	}
	if err := invert(t.DeviceCategories, models.Categories, m.categories); err != nil {
		return nil, fmt.Errorf("device categories: %w", err)
	}
	if err := invert(t.EquipmentStatuses, models.EquipmentStatuses, m.equipmentStatuses); err != nil {
		return nil, fmt.Errorf("equipment statuses: %w", err)
	}
	if err := invert(t.TicketStatuses, models.TicketStatuses, m.ticketStatuses); err != nil {
		return nil, fmt.Errorf("ticket statuses: %w", err)
	}

	for _, member := range t.Staff {
		for _, alias := range member.Aliases {
			key := fold(alias)
			if existing, ok := m.staff[key]; ok && existing != member.ID {
				return nil, fmt.Errorf("%w: staff alias %q maps to %d and %d", ErrInvalidTables, alias, existing, member.ID)
			}
			if _, ok := m.staff[key]; !ok {
				m.aliases = append(m.aliases, alias)
			}
			m.staff[key] = member.ID
		}
	}
	sort.Strings(m.aliases)

	for _, marker := range t.IssueMarkers {
		if f := fold(marker); f != "" {
			m.issueMarkers = append(m.issueMarkers, f)
		}
	}
	return m, nil
}

// Default builds a Mapper over the embedded tables.
func Default() (*Mapper, error) {
	t, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return NewMapper(t)
}

func invert[E ~string](table map[string][]string, valid []E, out map[string]E) error {
	for target, tokens := range table {
		value := E(target)
		if !oneOf(value, valid) {
			return fmt.Errorf("%w: unknown target %q", ErrInvalidTables, target)
		}
		for _, token := range tokens {
			key := fold(token)
			if existing, ok := out[key]; ok && existing != value {
				return fmt.Errorf("%w: token %q maps to %s and %s", ErrInvalidTables, token, existing, value)
			}
			out[key] = value
		}
	}
	return nil
}

func oneOf[E comparable](value E, valid []E) bool {
	for _, v := range valid {
		if v == value {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Category maps a legacy device type onto a category.
func (m *Mapper) Category(deviceType *string) (models.Category, error) {
	key := fold(deref(deviceType))
	if _, empty := m.emptyCategory[key]; empty || deviceType == nil {
		return m.defaultCategory, nil
	}
	if category, ok := m.categories[key]; ok {
		return category, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, deref(deviceType))
}

// EquipmentStatus maps a legacy device status. An absent status yields nil.
func (m *Mapper) EquipmentStatus(status *string) (*models.EquipmentStatus, error) {
	if status == nil {
		return nil, nil
	}
	if mapped, ok := m.equipmentStatuses[fold(*status)]; ok {
		return &mapped, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedStatus, *status)
}

// TicketStatus maps a legacy ticket status. Unknown or absent tokens yield nil.
func (m *Mapper) TicketStatus(status *string) *models.TicketStatus {
	if status == nil {
		return nil
	}
	if mapped, ok := m.ticketStatuses[fold(*status)]; ok {
		return &mapped
	}
	return nil
}

// TicketType derives the ticket type from its problem description.
func (m *Mapper) TicketType(problem *string) models.TicketType {
	text := fold(deref(problem))
	for _, marker := range m.issueMarkers {
		if strings.Contains(text, marker) {
			return models.TicketIssue
		}
	}
	return models.TicketRepair
}

// IsSponsored reports whether the device type marks equipment given through a sponsorship programme.
func (m *Mapper) IsSponsored(deviceType *string) bool {
	return m.sponsorPrefix != "" && strings.HasPrefix(fold(deref(deviceType)), m.sponsorPrefix)
}

// IsNone reports whether value is one of the literal tokens for "nothing".
func (m *Mapper) IsNone(value string) bool {
	_, ok := m.noneTokens[fold(value)]
	return ok
}

// Staff resolves a free-text staff name to a person id.
func (m *Mapper) Staff(name string) (int64, bool) {
	key := fold(name)
	if key == "" {
		return 0, false
	}
	id, ok := m.staff[key]
	return id, ok
}

// SuggestStaff returns the closest known staff alias for name, or "" when nothing is close.
func (m *Mapper) SuggestStaff(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, m.aliases)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Exceptions returns the exceptions table.
func (m *Mapper) Exceptions() Exceptions {
	return m.exceptions
}
