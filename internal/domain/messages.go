package domain

import "errors"

var (
	MessageSuccessRegister        = "account registered successfully"
	MessageSuccessLogin           = "logged in successfully"
	MessageSuccessLogout          = "logged out successfully"
	MessageSuccessGetAccount      = "account retrieved successfully"
	MessageSuccessAddVaccine      = "vaccine added successfully"
	MessageSuccessUpdateVaccine   = "vaccine updated successfully"
	MessageSuccessDeleteVaccine   = "vaccine deleted successfully"
	MessageSuccessGetVaccines     = "vaccines retrieved successfully"
	MessageSuccessConfirmDose     = "dose marked as taken"
	MessageSuccessAcceptAnalysis  = "analysis accepted"
	MessageSuccessDismissAnalysis = "analysis dismissed"
	MessageSuccessGetSuggestions  = "suggestions retrieved successfully"
	MessageSuccessDismissSugg     = "suggestion dismissed"
	MessageSuccessAddDietEntries  = "diet entries saved successfully"
	MessageSuccessDeleteDietEntry = "diet entry deleted successfully"
	MessageSuccessGetDietEntries  = "diet entries retrieved successfully"
	MessageSuccessDietSuggestions = "diet suggestions retrieved successfully"
	MessageSuccessGetTimeline     = "timeline retrieved successfully"
	MessageSuccessGoogleURL       = "google sign-in started"
	MessageSuccessQuickAdd        = "quick add options retrieved successfully"

	MessageFailedBodyRequest      = "failed to parse request body"
	MessageFailedRegister         = "failed to register account"
	MessageFailedLogin            = "failed to log in"
	MessageFailedGetAccount       = "failed to retrieve account"
	MessageFailedAddVaccine       = "failed to add vaccine"
	MessageFailedUpdateVaccine    = "failed to update vaccine"
	MessageFailedDeleteVaccine    = "failed to delete vaccine"
	MessageFailedGetVaccines      = "failed to retrieve vaccines"
	MessageFailedConfirmDose      = "failed to mark dose as taken"
	MessageFailedAcceptAnalysis   = "failed to accept analysis"
	MessageFailedDismissAnalysis  = "failed to dismiss analysis"
	MessageFailedGetSuggestions   = "failed to retrieve suggestions"
	MessageFailedDismissSugg      = "failed to dismiss suggestion"
	MessageFailedAddDietEntries   = "failed to save diet entries"
	MessageFailedDeleteDietEntry  = "failed to delete diet entry"
	MessageFailedGetDietEntries   = "failed to retrieve diet entries"
	MessageFailedGetTimeline      = "failed to build timeline"
	MessageFailedExport           = "failed to export vaccines"
	MessageFailedGoogleURL        = "failed to start google sign-in"
	MessageFailedQuickAdd         = "failed to retrieve quick add options"
	MessageFailedTimezone         = "failed to unknown timezone"
	MessageFailedTokenInvalid     = "failed to token invalid"
	MessageFailedStoreUnavailable = "record store unavailable"

	ErrVaccineNotFound    = errors.New("vaccine not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrDietEntryNotFound  = errors.New("diet entry not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNoPendingProposal  = errors.New("vaccine has no pending analysis")
	ErrNoNextDueDate      = errors.New("vaccine has no next due date")
	ErrActionInFlight     = errors.New("action already in progress")
	ErrNothingToSave      = errors.New("no entry has a name")
	ErrInvalidWindow      = errors.New("unsupported timeline window")
	ErrNoVaccines         = errors.New("no vaccines to export")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenNotFound      = errors.New("failed to token not found")
	ErrEmailTaken         = errors.New("email already registered")
)
