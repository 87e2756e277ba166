package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/premio/internal/common"
	"github.com/dmitrijs2005/premio/internal/validation"
)

// statusForError maps service-layer errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorDuplicateUsername), errors.Is(err, common.ErrorDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the standard error envelope. Internal errors are not
// echoed to the client.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusForError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "error", err.Error())
		message = "internal error"
	}

	body := gin.H{"success": false, "error": message}

	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		body["field"] = fieldErr.Field
	}

	c.AbortWithStatusJSON(status, body)
}

// bindingErrorMessage renders a ShouldBindJSON failure as a short
// field-oriented message.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return "invalid or missing fields: " + strings.Join(fields, ", ")
	}
	return "invalid request body"
}

// formatCurrency renders an amount as a dollar string with thousands
// separators, e.g. 23650 -> "$23,650.00".
func formatCurrency(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}
