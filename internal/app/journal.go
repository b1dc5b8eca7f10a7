package app

import (
	"log"
	"sync"

	"github.com/ayusman/ironcanvas/internal/interaction"
	"github.com/ayusman/ironcanvas/internal/palette"
	"github.com/ayusman/ironcanvas/internal/store"
)

// flushEvery is how many frames pass between writes of the running totals.
const flushEvery = 150

// journal records one drawing session. Events are edge triggered: holding a
// pinch over the same sector records a single event.
type journal struct {
	repo    *store.SessionRepository
	palette *palette.Palette
	session *store.Session
	prev    interaction.Result
	warn    sync.Once
}

func newJournal(s *store.Store, p *palette.Palette, width, height int) (*journal, error) {
	j := &journal{
		repo:    s.Sessions(),
		palette: p,
		session: &store.Session{Width: width, Height: height},
		prev:    interaction.Result{State: interaction.NoHand, Hover: -1, Selected: p.Selected()},
	}
	if err := j.repo.Create(j.session); err != nil {
		return nil, err
	}
	log.Printf("Journaling session %s", j.session.ID)
	return j, nil
}

// ID returns the session ID.
func (j *journal) ID() string {
	return j.session.ID
}

func (j *journal) record(res interaction.Result, hand bool) {
	s := j.session
	s.Frames++
	if hand {
		s.HandFrames++
	}
	if res.Active {
		s.Strokes++
	}

	if res.State == interaction.Selecting && !res.Cleared {
		if j.prev.State != interaction.Selecting || j.prev.Selected != res.Selected || j.prev.Cleared {
			j.event(store.EventSelect, j.palette.Entry(res.Selected).Name)
		}
	}

	if res.Cleared && !j.prev.Cleared {
		s.Clears++
		detail := "request"
		if res.State == interaction.Selecting {
			detail = "palette"
		}
		j.event(store.EventClear, detail)
	}

	j.prev = res

	if s.Frames%flushEvery == 0 {
		if err := j.repo.UpdateTotals(s); err != nil {
			j.fail(err)
		}
	}
}

func (j *journal) event(kind store.EventKind, detail string) {
	err := j.repo.AddEvent(&store.Event{
		SessionID: j.session.ID,
		Kind:      kind,
		Detail:    detail,
		Frame:     j.session.Frames,
	})
	if err != nil {
		j.fail(err)
	}
}

func (j *journal) fail(err error) {
	j.warn.Do(func() {
		log.Printf("Journal write failed, continuing without it: %v", err)
	})
}

// close writes the final totals and the end time.
func (j *journal) close() error {
	return j.repo.End(j.session)
}
