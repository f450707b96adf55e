package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/waypoint/internal/model"
)

// EventType names a domain event that can earn badges.
type EventType string

const (
	EventModuleComplete      EventType = "module_complete"
	EventCertificateComplete EventType = "certificate_complete"
	EventTourComplete        EventType = "tour_complete"
	EventWebinarAttend       EventType = "webinar_attend"
	EventLogin               EventType = "login"
)

var eventCriteria = map[EventType]model.CriteriaType{
	EventModuleComplete:      model.CriteriaModuleComplete,
	EventCertificateComplete: model.CriteriaCertificateComplete,
	EventTourComplete:        model.CriteriaTourComplete,
	EventWebinarAttend:       model.CriteriaWebinarAttend,
	EventLogin:               model.CriteriaStreakDays,
}

// CriteriaType returns the badge criteria type the event is evaluated
// against.
func (t EventType) CriteriaType() (model.CriteriaType, bool) {
	c, ok := eventCriteria[t]
	return c, ok
}

// Event is a domain event delivered to the badge engine.
type Event struct {
	Type EventType `json:"type" validate:"required,oneof=module_complete certificate_complete tour_complete webinar_attend login"`

	// Count is the external counter value carried by webinar_attend and
	// login events. It is used only when no Counters are configured.
	Count int `json:"count,omitempty" validate:"gte=0"`

	ModuleID string `json:"module_id,omitempty"`
	TrackID  string `json:"track_id,omitempty"`
}

// OnEvent awards every badge the event qualifies the user for and returns
// the first newly earned one, or nil. Repeating an event never awards a
// badge twice.
func (e *Engine) OnEvent(ctx context.Context, userID string, ev Event) (*model.Badge, error) {
	if err := payloads.check("event", ev); err != nil {
		return nil, err
	}
	awarded, err := e.awardBadges(ctx, userID, ev)
	if err != nil {
		return nil, err
	}
	if len(awarded) == 0 {
		return nil, nil
	}
	return &awarded[0], nil
}

func (e *Engine) awardBadges(ctx context.Context, userID string, ev Event) ([]model.Badge, error) {
	typ, ok := ev.Type.CriteriaType()
	if !ok {
		return nil, validationf("unknown event type %q", ev.Type)
	}
	badges, err := e.store.ListBadgesByCriteriaType(ctx, typ)
	if err != nil {
		return nil, persistence("list badges", err)
	}
	if len(badges) == 0 {
		return nil, nil
	}

	current, err := e.count(ctx, userID, typ, &ev)
	if err != nil {
		return nil, err
	}

	var awarded []model.Badge
	for _, b := range badges {
		held, err := e.store.FindUserBadge(ctx, userID, b.ID)
		if err != nil {
			return nil, persistence("find user badge", err)
		}
		if held != nil || current < b.Criteria.Required() {
			continue
		}

		ub := model.UserBadge{
			ID:       e.ids.Generate(),
			UserID:   userID,
			BadgeID:  b.ID,
			EarnedAt: e.now(),
			Progress: &model.Snapshot{Current: current, Total: b.Criteria.Required(), Source: string(ev.Type)},
		}
		err = e.store.InsertUserBadgeUnique(ctx, ub)
		if errors.Is(err, model.ErrConflict) {
			e.logger.Debug("badge conflict absorbed", "user", userID, "badge", b.ID)
			continue
		}
		if err != nil {
			return nil, persistence("award badge", err)
		}
		e.logger.Info("badge awarded", "user", userID, "badge", b.ID, "tier", b.Tier.String(), "event", string(ev.Type))
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// count returns the user's current value for a criteria type. ev is nil
// when computing progress outside of an event.
func (e *Engine) count(ctx context.Context, userID string, typ model.CriteriaType, ev *Event) (int, error) {
	switch typ {
	case model.CriteriaModuleComplete:
		n, err := e.store.CountCompleted(ctx, userID)
		if err != nil {
			return 0, persistence("count completed modules", err)
		}
		return n, nil

	case model.CriteriaCertificateComplete:
		n, err := e.store.CountCertificates(ctx, userID)
		if err != nil {
			return 0, persistence("count certificates", err)
		}
		return n, nil

	case model.CriteriaTourComplete:
		if ev != nil {
			return 1, nil
		}
		return 0, nil

	case model.CriteriaWebinarAttend:
		if e.counters != nil {
			n, err := e.counters.WebinarsAttended(ctx, userID)
			if err != nil {
				return 0, persistence("count webinars", err)
			}
			return n, nil
		}
		return eventCount(ev), nil

	case model.CriteriaStreakDays:
		if e.counters != nil {
			n, err := e.counters.LoginStreak(ctx, userID)
			if err != nil {
				return 0, persistence("count login streak", err)
			}
			return n, nil
		}
		return eventCount(ev), nil

	default:
		return 0, fmt.Errorf("count: unknown criteria type %q", typ)
	}
}

func eventCount(ev *Event) int {
	if ev == nil {
		return 0
	}
	return ev.Count
}

// BadgeStatus is one badge with the user's progress toward it.
type BadgeStatus struct {
	Badge      model.Badge `json:"badge"`
	Earned     bool        `json:"earned"`
	EarnedAt   *time.Time  `json:"earned_at,omitempty"`
	Current    int         `json:"current"`
	Total      int         `json:"total"`
	Percentage int         `json:"percentage"`
}

// BadgeProgress returns every badge definition with the user's progress,
// computed from the same counts used when awarding.
func (e *Engine) BadgeProgress(ctx context.Context, userID string) ([]BadgeStatus, error) {
	badges, err := e.store.ListBadges(ctx)
	if err != nil {
		return nil, persistence("list badges", err)
	}
	held, err := e.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, persistence("list user badges", err)
	}
	earned := make(map[string]model.UserBadge, len(held))
	for _, ub := range held {
		earned[ub.BadgeID] = ub
	}

	counts := make(map[model.CriteriaType]int)
	out := make([]BadgeStatus, 0, len(badges))
	for _, b := range badges {
		total := b.Criteria.Required()
		status := BadgeStatus{Badge: b, Total: total}

		if ub, ok := earned[b.ID]; ok {
			at := ub.EarnedAt
			status.Earned = true
			status.EarnedAt = &at
			status.Current = total
			status.Percentage = 100
			out = append(out, status)
			continue
		}

		typ := b.Criteria.Type()
		current, ok := counts[typ]
		if !ok {
			current, err = e.count(ctx, userID, typ, nil)
			if err != nil {
				return nil, err
			}
			counts[typ] = current
		}
		status.Current = min(current, total)
		if total > 0 {
			status.Percentage = status.Current * 100 / total
		}
		out = append(out, status)
	}
	return out, nil
}
