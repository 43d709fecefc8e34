package storefront

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorMessage renders an error from the API client for display. A message
// sent by the server wins over the status default.
func ErrorMessage(err error) string {
	if err == nil {
		return "Unknown error. Please try again."
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please check your connection."
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return "Invalid input. Please check the form."
	case http.StatusUnauthorized:
		return "Invalid credentials. Please try again."
	case http.StatusForbidden:
		return "You don't have permission."
	case http.StatusNotFound:
		return "Service not found."
	case http.StatusConflict:
		return "This account already exists."
	case http.StatusInternalServerError:
		return "Server error. Try again later."
	default:
		return fmt.Sprintf("Unexpected error (status %d).", apiErr.Status)
	}
}
