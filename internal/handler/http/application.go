package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ApplicationHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	Inbox(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	Act(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type applicationHandlerImpl struct {
	approvalService application.ApprovalService
}

func NewApplicationHandler(approvalService application.ApprovalService) ApplicationHandler {
	return &applicationHandlerImpl{
		approvalService: approvalService,
	}
}

func filterFromQuery(r *http.Request) application.ApplicationFilter {
	filter := application.ApplicationFilter{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Type = &t
	}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = &s
	}
	return filter
}

// Submit implements ApplicationHandler.
func (h *applicationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req application.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ApplicantID = principal.UserID

	app, err := h.approvalService.SubmitApplication(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Application submitted", app)
}

// ListMy implements ApplicationHandler.
func (h *applicationHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.approvalService.ListMyApplications(r.Context(), principal.UserID, filterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Inbox implements ApplicationHandler.
func (h *applicationHandlerImpl) Inbox(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.approvalService.ListPendingForActor(r.Context(), principal.UserID, filterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func viewRequest(r *http.Request, principal user.Principal) application.ViewRequest {
	return application.ViewRequest{
		ApplicationID: chi.URLParam(r, "id"),
		ViewerID:      principal.UserID,
		CanViewAll:    principal.Can(user.PermissionApplicationViewAll),
	}
}

// Get implements ApplicationHandler.
func (h *applicationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	app, err := h.approvalService.GetApplication(r.Context(), viewRequest(r, principal))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, app)
}

// ListEvents implements ApplicationHandler.
func (h *applicationHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	events, err := h.approvalService.ListApplicationEvents(r.Context(), viewRequest(r, principal))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}

// Act implements ApplicationHandler.
func (h *applicationHandlerImpl) Act(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req application.ActRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ApplicationID = chi.URLParam(r, "id")
	req.ActorID = principal.UserID

	app, err := h.approvalService.ActOnApplication(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", app)
}

// Cancel implements ApplicationHandler.
func (h *applicationHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	app, err := h.approvalService.CancelApplication(r.Context(), application.CancelRequest{
		ApplicationID: chi.URLParam(r, "id"),
		ActorID:       principal.UserID,
		Override:      principal.IsOwner(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Application cancelled", app)
}
