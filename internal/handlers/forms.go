package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// formAll holds errors that do not belong to a single field.
const formAll = "__all__"

const lookupFailed = "The form could not be checked right now. Please try again."

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var registerOnce sync.Once

// RegisterValidators adds the task enums and the username rule to gin's
// validator and makes field errors use form names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding engine is not go-playground/validator")
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		must(v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).Valid()
		}))
		must(v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
			return models.TaskPriority(fl.Field().String()).Valid()
		}))
		must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		}))
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type formErrors map[string]string

// bindForm binds the request form into dst and returns the field errors.
func bindForm(c *gin.Context, dst any) formErrors {
	errs := formErrors{}
	if err := c.ShouldBind(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs[formAll] = "Invalid form data."
			return errs
		}
		for _, fe := range verrs {
			errs[fe.Field()] = fieldMessage(fe)
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Enter a valid date."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "task_status", "task_priority", "oneof":
		return "Select a valid choice."
	}
	return "Enter a valid value."
}

// summary flattens errors into one line for flash notices.
func (e formErrors) summary() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == formAll {
			parts = append(parts, e[k])
			continue
		}
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, " ")
}

func merge(dst, src formErrors) formErrors {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
