package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"surveystudio/internal/editor"
	"surveystudio/internal/model"
)

// CommandType names an editor mutation
type CommandType string

const (
	CmdAddQuestion       CommandType = "add_question"
	CmdSetDetail         CommandType = "set_detail"
	CmdChangeQuestion    CommandType = "change_question"
	CmdRemoveQuestion    CommandType = "remove_question"
	CmdMoveUp            CommandType = "move_up"
	CmdMoveDown          CommandType = "move_down"
	CmdReorder           CommandType = "reorder"
	CmdAddOption         CommandType = "add_option"
	CmdChangeOption      CommandType = "change_option"
	CmdRemoveOption      CommandType = "remove_option"
	CmdAcceptSuggestion  CommandType = "accept_suggestion"
	CmdDiscardSuggestion CommandType = "discard_suggestion"
)

var ErrUnknownCommand = errors.New("unknown editor command")

// Command is one mutation sent by the builder over REST or WebSocket
type Command struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// commandArgs is the union of every command payload
type commandArgs struct {
	QuestionType model.QuestionType `json:"question_type"`
	Field        editor.Field       `json:"field"`
	Value        any                `json:"value"`
	Index        int                `json:"index"`
	Source       int                `json:"source"`
	Destination  int                `json:"destination"`
	Question     int                `json:"question"`
	Option       int                `json:"option"`
	Text         string             `json:"text"`
}

// applyCommand runs cmd against e
func applyCommand(e *editor.Editor, cmd Command) error {
	var a commandArgs
	if len(cmd.Payload) > 0 {
		if err := json.Unmarshal(cmd.Payload, &a); err != nil {
			return fmt.Errorf("invalid %s payload: %w", cmd.Type, err)
		}
	}

	switch cmd.Type {
	case CmdAddQuestion:
		return e.AddQuestion(a.QuestionType)
	case CmdSetDetail:
		return e.SetDetail(a.Field, a.Value)
	case CmdChangeQuestion:
		return e.ChangeQuestionField(a.Index, a.Field, a.Value)
	case CmdRemoveQuestion:
		e.RemoveQuestion(a.Index)
	case CmdMoveUp:
		e.MoveQuestionUp(a.Index)
	case CmdMoveDown:
		e.MoveQuestionDown(a.Index)
	case CmdReorder:
		e.ReorderByDragDrop(a.Source, a.Destination)
	case CmdAddOption:
		e.AddOption(a.Question)
	case CmdChangeOption:
		e.ChangeOption(a.Question, a.Option, a.Text)
	case CmdRemoveOption:
		e.RemoveOption(a.Question, a.Option)
	case CmdAcceptSuggestion:
		e.AcceptSuggestion(a.Index)
	case CmdDiscardSuggestion:
		e.DiscardSuggestion(a.Index)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return nil
}
