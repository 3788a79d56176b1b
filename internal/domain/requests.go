package domain

import "time"

type (
	RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Name     string `json:"name" validate:"required,max=100"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	GoogleCallbackRequest struct {
		Code  string `json:"code" query:"code" validate:"required_without=Error"`
		State string `json:"state" query:"state" validate:"required"`
		Error string `json:"error" query:"error"`
	}

	AuthResponse struct {
		Token   string  `json:"token"`
		Account Account `json:"account"`
	}

	AddVaccineRequest struct {
		Name         string   `json:"name" validate:"required,max=200"`
		DateTaken    string   `json:"dateTaken" validate:"omitempty,fuzzydate"`
		NextDueDate  string   `json:"nextDueDate" validate:"omitempty,fuzzydate"`
		History      []string `json:"history" validate:"dive,fuzzydate"`
		Notes        string   `json:"notes" validate:"max=4000"`
		SuggestionID string   `json:"suggestionId"`
	}

	// EditVaccineRequest replaces every field but the name
	EditVaccineRequest struct {
		DateTaken   string   `json:"dateTaken" validate:"omitempty,fuzzydate"`
		NextDueDate string   `json:"nextDueDate" validate:"omitempty,fuzzydate"`
		History     []string `json:"history" validate:"dive,fuzzydate"`
		Notes       string   `json:"notes" validate:"max=4000"`
	}

	DietEntryDraft struct {
		Type           DietEntryType `json:"type" validate:"required,oneof=food medicine symptom"`
		Name           string        `json:"name" validate:"max=200"`
		Timestamp      *time.Time    `json:"timestamp"`
		Notes          string        `json:"notes" validate:"max=2000"`
		Intensity      int           `json:"intensity" validate:"omitempty,min=1,max=5"`
		AfterFoodDelay OnsetDelay    `json:"afterFoodDelay" validate:"omitempty,oneof=Immediately 15m 1h 2h 4h 8h"`
	}

	AddDietEntriesRequest struct {
		Drafts []DietEntryDraft `json:"drafts" validate:"required,min=1,max=3,dive"`
	}

	QuickAddResponse struct {
		Options []string `json:"options"`
	}
)
