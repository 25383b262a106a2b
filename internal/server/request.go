package server

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// queryParams are the parsed query-string parameters shared by the read endpoints.
type queryParams struct {
	Query string `json:"q" validate:"max=2000"`
	TopN  int    `json:"top_n" validate:"gte=0,lte=100"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// parseQuery reads q, top_n and limit and validates them.
func (s *Server) parseQuery(r *http.Request) (queryParams, error) {
	var p queryParams
	p.Query = r.URL.Query().Get("q")

	var err error
	if p.TopN, err = intParam(r, "top_n"); err != nil {
		return p, err
	}
	if p.Limit, err = intParam(r, "limit"); err != nil {
		return p, err
	}

	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return p, &ErrValidation{Field: verrs[0].Field(), Message: "failed " + verrs[0].Tag() + "=" + verrs[0].Param()}
		}
		return p, err
	}
	return p, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
