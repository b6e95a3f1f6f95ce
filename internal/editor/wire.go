package editor

import (
	"sort"

	"surveystudio/internal/model"
)

// ToWirePayload returns the save payload with freshly renumbered orders.
// Editor-only fields are dropped.
func (e *Editor) ToWirePayload(status model.SurveyStatus) model.WireSurvey {
	s := e.survey
	out := model.WireSurvey{
		Title:       s.Title,
		Description: s.Description,
		Status:      status,
		IsPublic:    s.IsPublic,
		Questions:   make([]model.WireQuestion, len(s.Questions)),
	}
	for i, q := range s.Questions {
		wq := model.WireQuestion{
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			IsRequired:    q.IsRequired,
			QuestionOrder: i + 1,
			Options:       make([]model.WireOption, 0, len(q.Options)),
		}
		if q.QuestionType.HasOptions() {
			for j, o := range q.Options {
				wq.Options = append(wq.Options, model.WireOption{
					OptionText:  o.OptionText,
					OptionOrder: j + 1,
				})
			}
		}
		out.Questions[i] = wq
	}
	return out
}

// LoadFromWire replaces the draft with the backend edit payload and marks
// it clean. Missing is_required defaults to false, missing options to
// empty.
func (e *Editor) LoadFromWire(p model.EditPayload) {
	s := &model.Survey{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		IsPublic:    p.IsPublic != nil && *p.IsPublic,
		Questions:   make([]model.Question, 0, len(p.Questions)),
	}
	if !s.Status.Valid() {
		s.Status = model.StatusDraft
	}

	eqs := append([]model.EditQuestion{}, p.Questions...)
	sort.SliceStable(eqs, func(i, j int) bool {
		return orderKey(eqs[i].QuestionOrder) < orderKey(eqs[j].QuestionOrder)
	})

	for _, eq := range eqs {
		q := model.Question{
			QuestionText: eq.QuestionText,
			QuestionType: eq.QuestionType,
			IsRequired:   eq.IsRequired != nil && *eq.IsRequired,
			Options:      []model.Option{},
		}
		if !q.QuestionType.Valid() {
			q.QuestionType = model.QuestionTypeShortAnswer
		}
		if q.QuestionType.HasOptions() {
			eos := append([]model.EditOption{}, eq.Options...)
			sort.SliceStable(eos, func(i, j int) bool {
				return orderKey(eos[i].OptionOrder) < orderKey(eos[j].OptionOrder)
			})
			for _, eo := range eos {
				q.Options = append(q.Options, model.Option{OptionText: eo.OptionText})
			}
		}
		s.Questions = append(s.Questions, q)
	}
	renumberQuestions(s.Questions)

	e.survey = s
	e.baseline = s.Clone()
	e.state = Clean
	e.pending = nil
	e.revision++
}

// orderKey sorts unset (zero) orders after explicit ones while keeping
// their relative position.
func orderKey(order int) int {
	if order <= 0 {
		return int(^uint(0) >> 1)
	}
	return order
}

// Snapshot is the payload of one save attempt and the revision it was
// taken at
type Snapshot struct {
	Payload  model.WireSurvey
	Revision uint64
	survey   *model.Survey
}

// Snapshot captures the draft for a save. Edits made afterwards are not
// part of the payload.
func (e *Editor) Snapshot(status model.SurveyStatus) Snapshot {
	s := e.survey.Clone()
	s.Status = status
	return Snapshot{
		Payload:  e.ToWirePayload(status),
		Revision: e.revision,
		survey:   s,
	}
}

// MarkSaved records a successful save of snap. The draft returns to clean
// only if nothing changed since the snapshot was taken.
func (e *Editor) MarkSaved(snap Snapshot) bool {
	if snap.survey != nil {
		e.baseline = snap.survey.Clone()
	}
	e.survey.Status = snap.Payload.Status
	if snap.Revision != e.revision {
		return false
	}
	e.state = Clean
	return true
}

// Checkpoint is the serializable state of an editor
type Checkpoint struct {
	Survey   *model.Survey      `json:"survey"`
	Baseline *model.Survey      `json:"baseline"`
	State    DirtyState         `json:"state"`
	Revision uint64             `json:"revision"`
	Pending  *PendingNavigation `json:"pending,omitempty"`
}

// Checkpoint returns a copy of the editor state
func (e *Editor) Checkpoint() Checkpoint {
	cp := Checkpoint{
		Survey:   e.survey.Clone(),
		Baseline: e.baseline.Clone(),
		State:    e.state,
		Revision: e.revision,
	}
	if e.pending != nil {
		p := *e.pending
		cp.Pending = &p
	}
	return cp
}

// Restore rebuilds an editor from a checkpoint
func Restore(cp Checkpoint) *Editor {
	e := New()
	if cp.Survey != nil {
		e.survey = cp.Survey.Clone()
	}
	if cp.Baseline != nil {
		e.baseline = cp.Baseline.Clone()
	}
	if cp.State == Dirty {
		e.state = Dirty
	}
	e.revision = cp.Revision
	if cp.Pending != nil {
		p := *cp.Pending
		e.pending = &p
	}
	return e
}
