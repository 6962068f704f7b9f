package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// Fallback messages used when an error carries nothing user-presentable.
const (
	MessageSuccess    = "Success"
	MessageInternal   = "An error occurred"
	MessageValidation = "Validation error"
	MessageBadRequest = "Invalid request body"
)

// Response is the JSON envelope every API endpoint answers with. Clients
// branch on IsSuccess; Result holds the payload on success and per-field
// details on validation failures.
type Response struct {
	StatusCode int    `json:"statusCode"`
	IsSuccess  bool   `json:"isSuccess"`
	Message    string `json:"message"`
	Result     any    `json:"result"`
}

// Success sends a 200 envelope with the given result.
func Success(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		IsSuccess:  true,
		Message:    MessageSuccess,
		Result:     result,
	})
}

// SuccessMessage sends a 200 envelope with a custom message and no result.
func SuccessMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		IsSuccess:  true,
		Message:    message,
	})
}

// Error sends a failure envelope. If err is a *domain.AppError its code picks
// the HTTP status and its message is surfaced; otherwise 500 is returned with
// a generic message so internals never leak.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := MessageInternal
	if errors.As(err, &appErr) && appErr.Code != domain.CodeInternal {
		msg = appErr.Message
	}

	Fail(c, status, msg)
}

// Fail sends a failure envelope with an explicit status and message.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		IsSuccess:  false,
		Message:    message,
	})
}

// AbortFail is Fail followed by c.Abort, for middleware.
func AbortFail(c *gin.Context, status int, message string) {
	Fail(c, status, message)
	c.Abort()
}

// ValidationError sends a 400 envelope with per-field validation details.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError envelope and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		Fail(c, http.StatusBadRequest, MessageBadRequest)
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name[:1]) + name[1:]
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, Response{
		StatusCode: http.StatusBadRequest,
		IsSuccess:  false,
		Message:    MessageValidation,
		Result:     fieldErrors,
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "eqfield":
		return "Must match " + fe.Param()
	}
	if fe.Param() != "" {
		return "Failed on " + fe.Tag() + "=" + fe.Param()
	}
	return "Failed on " + fe.Tag()
}

// buildJSONTagMap maps struct field names to JSON tag names, descending into
// embedded structs so shared paging fields resolve too.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	collectJSONTags(t, m)
	return m
}

func collectJSONTags(t reflect.Type, m map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectJSONTags(f.Type, m)
			continue
		}
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
}

func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
