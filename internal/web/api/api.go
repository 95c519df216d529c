// Package api registers the JSON endpoints of the login page.
package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/shindakun/loginpage/internal/login"
	"github.com/shindakun/loginpage/internal/models"
	"github.com/shindakun/loginpage/internal/session"
	"github.com/shindakun/loginpage/internal/version"
)

// HealthOutput is the body of GET /api/health
type HealthOutput struct {
	Body struct {
		Status  string `json:"status" example:"ok" doc:"Always ok while the process serves requests"`
		Version string `json:"version" doc:"Build version"`
	}
}

// LoginStateOutput is the body of GET /api/login/state
type LoginStateOutput struct {
	Body struct {
		State      models.SubmissionState `json:"state" enum:"idle,submitting" doc:"Submission state of this browser's login form"`
		Submitting bool                   `json:"submitting"`
	}
}

// FormLookup finds an existing form without creating one
type FormLookup interface {
	Peek(id string) (*login.Form, bool)
}

// Mount attaches the API to router under /api
func Mount(router chi.Router, forms FormLookup) huma.API {
	apiCfg := huma.DefaultConfig("Login Page", version.GetVersion())
	apiCfg.OpenAPIPath = ""
	apiCfg.DocsPath = ""
	apiCfg.SchemasPath = ""
	api := humachi.New(router, apiCfg)
	Register(api, forms)
	return api
}

// Register adds the operations to api
func Register(api huma.API, forms FormLookup) {
	group := huma.NewGroup(api, "/api")

	huma.Register(group, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Status = "ok"
		out.Body.Version = version.GetVersion()
		return out, nil
	})

	huma.Register(group, huma.Operation{
		OperationID: "get-login-state",
		Method:      http.MethodGet,
		Path:        "/login/state",
		Summary:     "Login form submission state",
	}, func(ctx context.Context, _ *struct{}) (*LoginStateOutput, error) {
		state := models.SubmissionStateIdle
		if id, ok := session.BrowserIDFromContext(ctx); ok {
			if form, found := forms.Peek(id); found {
				state = form.State()
			}
		}

		out := &LoginStateOutput{}
		out.Body.State = state
		out.Body.Submitting = state.IsSubmitting()
		return out, nil
	})
}
