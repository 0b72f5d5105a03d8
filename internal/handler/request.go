package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/task-manager/internal/apperror"
)

// Request bodies. Fields tagged required must be present; on the update
// bodies every field is a pointer so that "absent" and "zero" differ and all
// of them have to be sent.

type CreateTaskRequest struct {
	Title    string `json:"title"    validate:"required"`
	Content  string `json:"content"`
	Priority int    `json:"priority"`
}

type UpdateTaskRequest struct {
	Title    *string `json:"title"    validate:"required,min=1"`
	Content  *string `json:"content"  validate:"required"`
	Priority *int    `json:"priority" validate:"required"`
}

type CreateUserRequest struct {
	Username  string `json:"username"  validate:"required"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

type UpdateUserRequest struct {
	Firstname *string `json:"firstname" validate:"required"`
	Lastname  *string `json:"lastname"  validate:"required"`
	Age       *int    `json:"age"       validate:"required"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names, so errors talk about
// "user_id" and not "UserID".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// maxBodyBytes caps every request body. The largest valid body is a few
// hundred bytes.
const maxBodyBytes = 1 << 20

// decodeJSON reads at most maxBodyBytes of the body into dst and runs its
// validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperror.ValidationFailed(fe.Field(),
				fmt.Sprintf("field %q failed the %q rule", fe.Field(), fe.Tag()))
		}
		return apperror.ValidationFailed("body", err.Error())
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", chi.URLParam(r, "id"))
}

func parseID(field, raw string) (int64, error) {
	if raw == "" {
		return 0, apperror.ValidationFailed(field, field+" is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(field, field+" must be an integer")
	}
	return id, nil
}
