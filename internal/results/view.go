package results

import (
	"errors"

	"surveystudio/internal/model"
)

// ViewState is the state of the results panel
type ViewState string

const (
	StateBrowse    ViewState = "browse"
	StateLoading   ViewState = "loading"
	StateDisplayed ViewState = "displayed"
)

var ErrBadTransition = errors.New("invalid results view transition")

// View tracks one results panel: browse, then loading once a survey is
// selected, then displayed on success or back to browse with an error.
type View struct {
	State    ViewState                     `json:"state"`
	SurveyID string                        `json:"surveyId,omitempty"`
	Result   *model.AggregatedSurveyResult `json:"result,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// NewView returns a view in the browse state
func NewView() *View {
	return &View{State: StateBrowse}
}

// Select starts loading a survey. Selecting again while displayed is
// allowed; selecting while loading is not.
func (v *View) Select(surveyID string) error {
	if v.State == StateLoading {
		return ErrBadTransition
	}
	v.State = StateLoading
	v.SurveyID = surveyID
	v.Result = nil
	v.Error = ""
	return nil
}

// Display finishes a load successfully
func (v *View) Display(r *model.AggregatedSurveyResult) error {
	if v.State != StateLoading {
		return ErrBadTransition
	}
	v.State = StateDisplayed
	v.Result = r
	return nil
}

// Fail finishes a load with an error and returns to browse
func (v *View) Fail(err error) error {
	if v.State != StateLoading {
		return ErrBadTransition
	}
	v.State = StateBrowse
	v.Result = nil
	if err != nil {
		v.Error = err.Error()
	}
	return nil
}
