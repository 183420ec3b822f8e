package llm

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/satriahrh/linksense/domain"
)

const (
	quotaExceededMessage    = "QUOTA_EXCEEDED: LinkSense AI is popular! Your project quota is full. Wait a moment or switch to a credential with a higher quota."
	requestErrorMessage     = "REQUEST_ERROR: The AI could not process this request structure."
	modelUnavailableMessage = "MODEL_UNAVAILABLE: The requested model is not available for this credential."
	emptyResponseMessage    = "AI returned an empty response"
)

// ClassifyError maps a backend failure onto the domain error kinds. The
// status code of a genai.APIError wins; otherwise the message text is
// searched for a status indicator. Anything else is KindUnknown wrapping err
// unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var se *domain.ServiceError
	if errors.As(err, &se) {
		return err
	}

	switch statusOf(err) {
	case http.StatusTooManyRequests:
		return domain.NewServiceError(domain.KindRateLimited, quotaExceededMessage, err)
	case http.StatusBadRequest:
		return domain.NewServiceError(domain.KindInvalidRequest, requestErrorMessage, err)
	case http.StatusNotFound:
		return domain.NewServiceError(domain.KindModelUnavailable, modelUnavailableMessage, err)
	default:
		return domain.NewServiceError(domain.KindUnknown, "", err)
	}
}

func statusOf(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code != 0 {
		return apiErrPtr.Code
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return http.StatusTooManyRequests
	case strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT"):
		return http.StatusBadRequest
	case strings.Contains(msg, "404") || strings.Contains(msg, "NOT_FOUND"):
		return http.StatusNotFound
	}
	return 0
}
