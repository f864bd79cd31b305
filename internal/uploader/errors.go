package uploader

import "fmt"

// APIError is a non-2xx answer from the portfolio API.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if e.Status == 404 {
		if body == "" {
			body = "<empty>"
		}
		return fmt.Sprintf("API endpoint not found (404) at %s. Response body: %s", e.URL, body)
	}
	return fmt.Sprintf("API error %d at %s: %s", e.Status, e.URL, body)
}

// NetworkError means the API could not be reached at all.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: could not reach API at %s: %v. Ensure the backend server is running and the API base URL is correct", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UploadError is a failed direct upload to the media host. Status is 0 for
// transport failures.
type UploadError struct {
	Status int
	Body   string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cloudinary upload failed: %v", e.Err)
	}
	return fmt.Sprintf("cloudinary upload failed: %d %s", e.Status, e.Body)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ValidationError rejects input before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}
