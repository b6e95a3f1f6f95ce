// Command seed signs in to the survey backend and creates a demo survey
// built through the editor, so a fresh environment has something to show.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"surveystudio/internal/backend"
	"surveystudio/internal/config"
	"surveystudio/internal/editor"
	"surveystudio/internal/logger"
	"surveystudio/internal/model"
)

type seedQuestion struct {
	text     string
	kind     model.QuestionType
	required bool
	options  []string
}

var demo = []seedQuestion{
	{
		text:     "Which model did you purchase?",
		kind:     model.QuestionTypeMultipleChoice,
		required: true,
		options:  []string{"Standard Model", "Pro / Plus Model", "Ultra / Max Model"},
	},
	{
		text:    "Which features do you use every day?",
		kind:    model.QuestionTypeCheckbox,
		options: []string{"Display", "Battery", "Camera", "Speed", "Design"},
	},
	{
		text:     "What is one thing you would improve or change about this smartphone?",
		kind:     model.QuestionTypeShortAnswer,
		required: true,
	},
}

func buildDemo() (*editor.Editor, error) {
	e := editor.New()
	if err := e.SetDetail(editor.FieldTitle, "Smartphone Launch Feedback"); err != nil {
		return nil, err
	}
	if err := e.SetDetail(editor.FieldDescription, "Understand user perception, satisfaction, and improvement areas for the new device."); err != nil {
		return nil, err
	}
	if err := e.SetDetail(editor.FieldIsPublic, true); err != nil {
		return nil, err
	}

	for i, q := range demo {
		if err := e.AddQuestion(q.kind); err != nil {
			return nil, err
		}
		if err := e.ChangeQuestionField(i, editor.FieldQuestionText, q.text); err != nil {
			return nil, err
		}
		if err := e.ChangeQuestionField(i, editor.FieldIsRequired, q.required); err != nil {
			return nil, err
		}
		for j, opt := range q.options {
			if j > 0 {
				e.AddOption(i)
			}
			e.ChangeOption(i, j, opt)
		}
	}
	return e, e.ValidateForPublish()
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, cfg.BackendMaxRetries, log)
	auth, err := client.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Fatalf("Failed to sign in: %v", err)
	}

	e, err := buildDemo()
	if err != nil {
		log.Fatalf("Demo survey is invalid: %v", err)
	}

	res, err := client.CreateSurvey(ctx, auth.Token, e.ToWirePayload(model.StatusPublished))
	if err != nil {
		log.Fatalf("Failed to create survey: %v", err)
	}

	fmt.Printf("Successfully created survey '%s' (%s) for %s\n", e.Survey().Title, res.NiceURL, email)
}
