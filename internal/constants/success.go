package constants

import "net/http"

// APISuccess represents a standardized API success response with code and HTTP status.
// Use these predefined success constants for consistent API responses across the application.
type APISuccess struct {
	Code   string
	Status int
}

var (
	SuccessCreated = APISuccess{
		Code:   CodeShortCreated,
		Status: http.StatusCreated,
	}
	SuccessUpdated = APISuccess{
		Code:   CodeShortUpdated,
		Status: http.StatusOK,
	}
	SuccessDeactivated = APISuccess{
		Code:   CodeDeactivated,
		Status: http.StatusOK,
	}
	SuccessFound = APISuccess{
		Code:   CodeShortFound,
		Status: http.StatusOK,
	}
	SuccessAnalyticsFound = APISuccess{
		Code:   CodeAnalyticsFound,
		Status: http.StatusOK,
	}
	SuccessVerdictFound = APISuccess{
		Code:   CodeVerdictFound,
		Status: http.StatusOK,
	}
	SuccessReportsFound = APISuccess{
		Code:   CodeReportsFound,
		Status: http.StatusOK,
	}
)
