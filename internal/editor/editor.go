// Package editor holds the survey-builder state model: one in-memory
// draft, the mutations the builder UI issues against it, and the
// dirty/clean lifecycle used to guard navigation.
//
// An Editor is not safe for concurrent use; callers serialize access.
package editor

import (
	"errors"
	"fmt"

	"surveystudio/internal/model"
)

// DirtyState is the save state of the draft
type DirtyState string

const (
	Clean DirtyState = "clean"
	Dirty DirtyState = "dirty"
)

// Field names a mutable survey or question field
type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldIsPublic     Field = "is_public"
	FieldQuestionText Field = "question_text"
	FieldQuestionType Field = "question_type"
	FieldIsRequired   Field = "is_required"
)

const defaultQuestionText = "Untitled Question"

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value for field")
	ErrInvalidType  = errors.New("invalid question type")
)

// Editor owns one survey draft
type Editor struct {
	survey   *model.Survey
	baseline *model.Survey
	state    DirtyState
	revision uint64
	pending  *PendingNavigation
}

// New returns an editor over a fresh, empty draft
func New() *Editor {
	s := &model.Survey{
		Status:    model.StatusDraft,
		Questions: []model.Question{},
	}
	return &Editor{
		survey:   s,
		baseline: s.Clone(),
		state:    Clean,
	}
}

// Survey returns a copy of the current draft
func (e *Editor) Survey() *model.Survey {
	return e.survey.Clone()
}

// State returns the current dirty state
func (e *Editor) State() DirtyState {
	return e.state
}

// IsDirty reports whether the draft has unsaved mutations
func (e *Editor) IsDirty() bool {
	return e.state == Dirty
}

// Revision increases by one on every mutation
func (e *Editor) Revision() uint64 {
	return e.revision
}

// QuestionCount returns the number of questions in the draft
func (e *Editor) QuestionCount() int {
	return len(e.survey.Questions)
}

func (e *Editor) touch() {
	e.revision++
	e.state = Dirty
}

func (e *Editor) inRange(index int) bool {
	return index >= 0 && index < len(e.survey.Questions)
}

// SetDetail mutates title, description or is_public
func (e *Editor) SetDetail(field Field, value any) error {
	switch field {
	case FieldTitle, FieldDescription:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidValue, field)
		}
		if field == FieldTitle {
			e.survey.Title = s
		} else {
			e.survey.Description = s
		}
	case FieldIsPublic:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidValue, field)
		}
		e.survey.IsPublic = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	e.touch()
	return nil
}

// AddQuestion appends a question with default content for t
func (e *Editor) AddQuestion(t model.QuestionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	q := model.Question{
		QuestionText:  defaultQuestionText,
		QuestionType:  t,
		QuestionOrder: len(e.survey.Questions) + 1,
		Options:       []model.Option{},
	}
	if t.HasOptions() {
		q.Options = []model.Option{{OptionText: "Option 1", OptionOrder: 1}}
	}
	e.survey.Questions = append(e.survey.Questions, q)
	e.touch()
	return nil
}

// ChangeQuestionField mutates one field of the question at index. An
// out-of-range index is ignored.
func (e *Editor) ChangeQuestionField(index int, field Field, value any) error {
	if !e.inRange(index) {
		return nil
	}
	q := &e.survey.Questions[index]

	switch field {
	case FieldQuestionText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidValue, field)
		}
		q.QuestionText = s
	case FieldIsRequired:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidValue, field)
		}
		q.IsRequired = b
	case FieldQuestionType:
		t, err := toQuestionType(value)
		if err != nil {
			return err
		}
		changeType(q, t)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	e.touch()
	return nil
}

func toQuestionType(value any) (model.QuestionType, error) {
	var t model.QuestionType
	switch v := value.(type) {
	case string:
		t = model.QuestionType(v)
	case model.QuestionType:
		t = v
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidValue, FieldQuestionType)
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return t, nil
}

// changeType keeps short_answer option-free and seeds exactly one empty
// option when a question becomes option-bearing without any.
func changeType(q *model.Question, t model.QuestionType) {
	q.QuestionType = t
	if !t.HasOptions() {
		q.Options = []model.Option{}
		return
	}
	if len(q.Options) == 0 {
		q.Options = []model.Option{{OptionText: "", OptionOrder: 1}}
	}
}

// RemoveQuestion deletes the question at index and renumbers the rest
func (e *Editor) RemoveQuestion(index int) {
	if !e.inRange(index) {
		return
	}
	qs := e.survey.Questions
	e.survey.Questions = append(qs[:index:index], qs[index+1:]...)
	renumberQuestions(e.survey.Questions)
	e.touch()
}

// MoveQuestionUp swaps the question with its predecessor
func (e *Editor) MoveQuestionUp(index int) {
	if !e.inRange(index) || index == 0 {
		return
	}
	e.swap(index, index-1)
}

// MoveQuestionDown swaps the question with its successor
func (e *Editor) MoveQuestionDown(index int) {
	if !e.inRange(index) || index == len(e.survey.Questions)-1 {
		return
	}
	e.swap(index, index+1)
}

func (e *Editor) swap(i, j int) {
	qs := e.survey.Questions
	qs[i], qs[j] = qs[j], qs[i]
	renumberQuestions(qs)
	e.touch()
}

// ReorderByDragDrop moves the question at source into the gap before
// destination (0..N). Dropping into the gap on either side of the source
// leaves the order unchanged.
func (e *Editor) ReorderByDragDrop(source, destination int) {
	n := len(e.survey.Questions)
	if !e.inRange(source) || destination < 0 || destination > n {
		return
	}
	if destination == source || destination == source+1 {
		return
	}

	qs := e.survey.Questions
	moved := qs[source]
	rest := append(append([]model.Question{}, qs[:source]...), qs[source+1:]...)
	if destination > source {
		destination--
	}
	out := make([]model.Question, 0, n)
	out = append(out, rest[:destination]...)
	out = append(out, moved)
	out = append(out, rest[destination:]...)

	renumberQuestions(out)
	e.survey.Questions = out
	e.touch()
}

// AddOption appends "Option k" to an option-bearing question
func (e *Editor) AddOption(questionIndex int) {
	if !e.inRange(questionIndex) {
		return
	}
	q := &e.survey.Questions[questionIndex]
	if !q.QuestionType.HasOptions() {
		return
	}
	q.Options = append(q.Options, model.Option{
		OptionText: fmt.Sprintf("Option %d", len(q.Options)+1),
	})
	renumberOptions(q.Options)
	e.touch()
}

// ChangeOption sets the text of one option
func (e *Editor) ChangeOption(questionIndex, optionIndex int, text string) {
	if !e.inRange(questionIndex) {
		return
	}
	q := &e.survey.Questions[questionIndex]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return
	}
	q.Options[optionIndex].OptionText = text
	e.touch()
}

// RemoveOption deletes one option and renumbers the rest
func (e *Editor) RemoveOption(questionIndex, optionIndex int) {
	if !e.inRange(questionIndex) {
		return
	}
	q := &e.survey.Questions[questionIndex]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return
	}
	q.Options = append(q.Options[:optionIndex:optionIndex], q.Options[optionIndex+1:]...)
	renumberOptions(q.Options)
	e.touch()
}

// Reset discards every mutation since the last load or save
func (e *Editor) Reset() {
	e.survey = e.baseline.Clone()
	e.state = Clean
	e.pending = nil
	e.revision++
}

func renumberQuestions(qs []model.Question) {
	for i := range qs {
		qs[i].QuestionOrder = i + 1
		renumberOptions(qs[i].Options)
	}
}

func renumberOptions(opts []model.Option) {
	for i := range opts {
		opts[i].OptionOrder = i + 1
	}
}
