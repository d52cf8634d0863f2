package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

func TestAuthHandler_Session_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, idToken string) (string, *domain.Staff, error) {
			if idToken != "idp-token" {
				t.Fatalf("unexpected token: %s", idToken)
			}
			return "session123", &domain.Staff{ID: "staff-1", Phone: "+254712345678", Role: domain.RoleStaff}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/session", `{"id_token":"idp-token"}`, domain.Actor{})
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "session123" || resp.Staff.ID != "staff-1" || resp.Staff.Role != domain.RoleStaff {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Session_Rejected(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, idToken string) (string, *domain.Staff, error) {
			return "", nil, domain.ErrUnauthorized
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/session", `{"id_token":"forged"}`, domain.Actor{})
	if err := h.Session(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthHandler_Session_MissingToken(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, idToken string) (string, *domain.Staff, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/session", `{}`, domain.Actor{})
	err := h.Session(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["id_token"] == "" {
		t.Fatalf("expected id_token validation error, got %v", err)
	}
}

func TestAuthHandler_Session_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/auth/session", "{", domain.Actor{})
	err := h.Session(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestStaffHandler_Me(t *testing.T) {
	stub := &stubStaffService{
		getFn: func(ctx context.Context, id string) (*domain.Staff, error) {
			if id != staffActor.StaffID {
				t.Fatalf("expected caller's id, got %s", id)
			}
			return &domain.Staff{ID: id, Name: "Wanjiku", Role: domain.RoleStaff}, nil
		},
	}
	h := NewStaffHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/me", "", staffActor)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStaffHandler_RequiresAuthentication(t *testing.T) {
	h := NewStaffHandler(&stubStaffService{})

	c, _ := newTestContext(http.MethodGet, "/v1/me", "", domain.Actor{})
	err := h.Me(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestStaffHandler_Create(t *testing.T) {
	stub := &stubStaffService{
		createFn: func(ctx context.Context, actor domain.Actor, in ports.StaffInput) (*domain.Staff, error) {
			if !actor.IsAdmin() || in.Phone != "0712345678" || in.Role != domain.RoleAdmin {
				t.Fatalf("unexpected args: %+v %+v", actor, in)
			}
			return &domain.Staff{ID: "s-9", Name: in.Name, Phone: "+254712345678", Role: in.Role}, nil
		},
	}
	h := NewStaffHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/staff", `{"name":"Otieno","phone":"0712345678","role":"admin"}`, adminActor)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestStaffHandler_Create_RejectsUnknownRole(t *testing.T) {
	h := NewStaffHandler(&stubStaffService{})

	c, _ := newTestContext(http.MethodPost, "/v1/staff", `{"name":"Otieno","phone":"0712345678","role":"owner"}`, adminActor)
	err := h.Create(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["role"] == "" {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestStaffHandler_Delete(t *testing.T) {
	stub := &stubStaffService{
		deleteFn: func(ctx context.Context, actor domain.Actor, id string) error {
			if id != "s-2" {
				t.Fatalf("unexpected id %s", id)
			}
			return nil
		},
	}
	h := NewStaffHandler(stub)

	c, rec := newTestContext(http.MethodDelete, "/v1/staff/s-2", "", adminActor)
	c.SetParamNames("id")
	c.SetParamValues("s-2")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
