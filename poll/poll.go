// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/class-pulse/models"
)

// Poll is one question with a fixed option list plus its live tally state.
// The definition is immutable; everything else is guarded by mu.
type Poll struct {
	id        string
	def       models.PollDefinition
	roles     map[int]string
	createdAt time.Time
	evaluator *Evaluator

	mu       sync.Mutex
	version  int64
	status   string
	closedAt *time.Time
	ledger   *Ledger
	tallies  []models.Tally
	insights []models.Insight
}

func newPoll(id string, def models.PollDefinition, createdAt time.Time, evaluator *Evaluator) *Poll {
	p := &Poll{
		id:        id,
		def:       def,
		roles:     assignRoles(def),
		createdAt: createdAt,
		evaluator: evaluator,
		version:   1,
		status:    models.StatusOpen,
		ledger:    newLedger(def.Options),
	}
	p.refreshLocked()
	return p
}

func (p *Poll) ID() string {
	return p.id
}

// submit records a response and returns the snapshot that includes it,
// together with any insights the response newly triggered. onAccept runs
// with the poll locked, so whatever it publishes leaves in ledger order.
func (p *Poll) submit(token, option string, at time.Time, onAccept func(models.PollSnapshot, []models.Insight)) (models.PollSnapshot, []models.Insight, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != models.StatusOpen {
		return models.PollSnapshot{}, nil, ErrPollClosed
	}
	r := models.Response{PollID: p.id, ParticipantToken: token, Option: option, SubmittedAt: at}
	if err := p.ledger.Record(r); err != nil {
		return models.PollSnapshot{}, nil, err
	}

	previous := p.insights
	p.version++
	p.refreshLocked()
	snap, fresh := p.snapshotLocked(), newInsights(previous, p.insights)
	if onAccept != nil {
		onAccept(snap, fresh)
	}
	return snap, fresh, nil
}

func (p *Poll) hasResponded(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.HasResponded(token)
}

// close freezes the ledger and returns the final snapshot.
func (p *Poll) close(at time.Time) (models.PollSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == models.StatusClosed {
		return models.PollSnapshot{}, ErrAlreadyClosed
	}
	p.ledger.Freeze()
	p.version++
	p.status = models.StatusClosed
	p.closedAt = &at
	p.refreshLocked()
	return p.snapshotLocked(), nil
}

func (p *Poll) snapshot() models.PollSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// refreshLocked recomputes tallies from the ledger and re-runs insights.
func (p *Poll) refreshLocked() {
	p.tallies = Recompute(p.def.Options, p.ledger.Choices(), p.roles)
	p.insights = p.evaluator.Evaluate(p.snapshotLocked())
}

func (p *Poll) snapshotLocked() models.PollSnapshot {
	options := make([]string, len(p.def.Options))
	copy(options, p.def.Options)

	tallies := make([]models.Tally, len(p.tallies))
	copy(tallies, p.tallies)

	insights := make([]models.Insight, len(p.insights))
	copy(insights, p.insights)

	total := p.ledger.Len()
	snap := models.PollSnapshot{
		ID:                p.id,
		Version:           p.version,
		Question:          p.def.Question,
		Options:           options,
		Kind:              p.def.Kind,
		CorrectOption:     p.def.CorrectOption,
		ClassSize:         p.def.ClassSize,
		Status:            p.status,
		CreatedAt:         p.createdAt,
		Tallies:           tallies,
		TotalResponses:    total,
		ParticipationRate: RoundPercent(total, p.def.ClassSize),
		Insights:          insights,
	}
	if p.closedAt != nil {
		closedAt := *p.closedAt
		snap.ClosedAt = &closedAt
	}
	return snap
}

// cloneSnapshot returns a copy of snap that shares no slices or pointers
// with it.
func cloneSnapshot(snap models.PollSnapshot) models.PollSnapshot {
	out := snap
	if snap.Options != nil {
		out.Options = make([]string, len(snap.Options))
		copy(out.Options, snap.Options)
	}
	if snap.Tallies != nil {
		out.Tallies = make([]models.Tally, len(snap.Tallies))
		copy(out.Tallies, snap.Tallies)
	}
	if snap.Insights != nil {
		out.Insights = make([]models.Insight, len(snap.Insights))
		copy(out.Insights, snap.Insights)
	}
	if snap.ClosedAt != nil {
		closedAt := *snap.ClosedAt
		out.ClosedAt = &closedAt
	}
	return out
}

// normalizeDefinition trims input, drops blank option slots, and checks every
// creation rule. The returned definition is safe to store.
func normalizeDefinition(def models.PollDefinition) (models.PollDefinition, error) {
	out := models.PollDefinition{
		Question:      strings.TrimSpace(def.Question),
		Kind:          strings.TrimSpace(def.Kind),
		CorrectOption: strings.TrimSpace(def.CorrectOption),
		ClassSize:     def.ClassSize,
	}
	if out.Question == "" {
		return models.PollDefinition{}, invalidDefinition("question is required")
	}

	switch out.Kind {
	case "":
		out.Kind = models.KindMultipleChoice
	case "understanding":
		out.Kind = models.KindUnderstandingCheck
	case models.KindMultipleChoice, models.KindUnderstandingCheck, models.KindFactBased:
	default:
		return models.PollDefinition{}, invalidDefinition("unknown kind " + out.Kind)
	}

	seen := make(map[string]struct{}, len(def.Options))
	for _, opt := range def.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, dup := seen[opt]; dup {
			return models.PollDefinition{}, invalidDefinition("duplicate option " + opt)
		}
		seen[opt] = struct{}{}
		out.Options = append(out.Options, opt)
	}
	if len(out.Options) < 2 {
		return models.PollDefinition{}, invalidDefinition("at least 2 distinct options are required")
	}

	if out.Kind == models.KindFactBased && out.CorrectOption == "" {
		return models.PollDefinition{}, invalidDefinition("fact_based polls need a correct_option")
	}
	if out.CorrectOption != "" {
		if _, ok := seen[out.CorrectOption]; !ok {
			return models.PollDefinition{}, invalidDefinition("correct_option must be one of the options")
		}
	}

	if out.ClassSize <= 0 {
		return models.PollDefinition{}, invalidDefinition("class_size must be positive")
	}

	if len(def.OptionRoles) > 0 {
		out.OptionRoles = make(map[string]string, len(def.OptionRoles))
		for label, role := range def.OptionRoles {
			label = strings.TrimSpace(label)
			if _, ok := seen[label]; !ok {
				return models.PollDefinition{}, invalidDefinition("role assigned to unknown option " + label)
			}
			out.OptionRoles[label] = strings.TrimSpace(role)
		}
	}

	return out, nil
}
